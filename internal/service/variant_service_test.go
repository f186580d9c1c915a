package service

import (
	"errors"
	"testing"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/util"
)

func variantContent() CreateVariantRequest {
	return CreateVariantRequest{
		QuestionText:  "Same setup, different numbers",
		Options:       mcqOptions(),
		CorrectAnswer: "C",
	}
}

func TestCreateVariant(t *testing.T) {
	e := newTestEnv(t)
	original := e.createQuestion(t)
	e.toPendingCreator(t, original.ID)

	variant, err := e.variants.CreateVariant(original.ID, e.creator.ID, variantContent())
	if err != nil {
		t.Fatalf("create variant: %v", err)
	}

	if !variant.IsVariant || variant.OriginalQuestionID != original.ID {
		t.Error("variant must reference its original")
	}
	if variant.Status != model.StatusPendingProcessor {
		t.Errorf("variant status = %s, want pending_processor", variant.Status)
	}
	if variant.ExamID != original.ExamID || variant.SubjectID != original.SubjectID || variant.TopicID != original.TopicID {
		t.Error("variant must inherit the classification triple")
	}
	if variant.AssignedProcessor != original.AssignedProcessor || variant.AssignedCreator != e.creator.ID {
		t.Error("variant must inherit review assignments")
	}
	if variant.CorrectAnswer != "C" {
		t.Errorf("variant answer = %s, want C", variant.CorrectAnswer)
	}

	// 变体创建同时是创题人对原题的交付信号
	got := e.reload(t, original.ID)
	if got.Status != model.StatusPendingProcessor {
		t.Errorf("original status = %s, want pending_processor", got.Status)
	}

	history, err := e.questions.ListHistory(variant.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Errorf("variant history entries = %d, want 2 (variant_created + approved)", len(history))
	}

	siblings, err := e.variants.ListVariants(original.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(siblings) != 1 || siblings[0].ID != variant.ID {
		t.Errorf("ListVariants = %+v, want exactly the new variant", siblings)
	}
}

func TestCreateVariantGuards(t *testing.T) {
	e := newTestEnv(t)
	original := e.createQuestion(t)
	e.toPendingCreator(t, original.ID)

	t.Run("only assigned creator", func(t *testing.T) {
		other := e.addUser(t, "other-creator", model.Creator, model.UserActive)
		_, err := e.variants.CreateVariant(original.ID, other.ID, variantContent())
		if !errors.Is(err, util.ErrAccessDenied) {
			t.Errorf("err = %v, want access denied", err)
		}
	})

	t.Run("invalid mcq content", func(t *testing.T) {
		req := variantContent()
		req.CorrectAnswer = "Z"
		_, err := e.variants.CreateVariant(original.ID, e.creator.ID, req)
		if !errors.Is(err, util.ErrValidation) {
			t.Errorf("err = %v, want validation", err)
		}
	})

	t.Run("no variant of a variant", func(t *testing.T) {
		variant, err := e.variants.CreateVariant(original.ID, e.creator.ID, variantContent())
		if err != nil {
			t.Fatal(err)
		}
		_, err = e.variants.CreateVariant(variant.ID, e.creator.ID, variantContent())
		if !errors.Is(err, util.ErrValidation) {
			t.Errorf("err = %v, want validation", err)
		}
	})

	t.Run("unknown original", func(t *testing.T) {
		_, err := e.variants.CreateVariant("no-such-id", e.creator.ID, variantContent())
		if !errors.Is(err, util.ErrNotFound) {
			t.Errorf("err = %v, want not found", err)
		}
	})
}

// 解析人指派在原题与兄弟变体之间共享
func TestExplainerPropagatesToSiblingVariants(t *testing.T) {
	e := newTestEnv(t)
	original := e.createQuestion(t)
	e.toPendingCreator(t, original.ID)

	variant, err := e.variants.CreateVariant(original.ID, e.creator.ID, variantContent())
	if err != nil {
		t.Fatal(err)
	}

	// 变体创建已把原题送回待审核，直接审批进入解析环节并指派解析人
	approved, err := e.workflow.Approve(original.ID, e.processor.ID, e.explainer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if approved.Status != model.StatusPendingExplainer {
		t.Fatalf("original status = %s, want pending_explainer", approved.Status)
	}

	got := e.reload(t, variant.ID)
	if got.AssignedExplainer != e.explainer.ID {
		t.Errorf("sibling variant explainer = %d, want %d", got.AssignedExplainer, e.explainer.ID)
	}

	// 已有指派的不被覆盖
	otherExplainer := e.addUser(t, "other-explainer", model.Explainer, model.UserActive)
	v2, err := e.variants.CreateVariant(original.ID, e.creator.ID, variantContent())
	if err != nil {
		t.Fatal(err)
	}
	if v2.AssignedExplainer != e.explainer.ID {
		t.Fatalf("new variant should inherit explainer from original, got %d", v2.AssignedExplainer)
	}

	if _, err := e.workflow.Approve(v2.ID, e.processor.ID, otherExplainer.ID); err != nil {
		t.Fatal(err)
	}
	got = e.reload(t, v2.ID)
	if got.AssignedExplainer != e.explainer.ID {
		t.Errorf("write-once explainer overwritten to %d", got.AssignedExplainer)
	}
}
