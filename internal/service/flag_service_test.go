package service

import (
	"errors"
	"testing"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/util"
)

func TestRaiseFlagLegality(t *testing.T) {
	e := newTestEnv(t)

	t.Run("reason required", func(t *testing.T) {
		q := e.createQuestion(t)
		if _, err := e.flags.RaiseFlag(q.ID, e.creator.ID, ""); !errors.Is(err, util.ErrValidation) {
			t.Errorf("err = %v, want validation", err)
		}
	})

	t.Run("creator can only flag in creation stage", func(t *testing.T) {
		q := e.createQuestion(t)
		if _, err := e.flags.RaiseFlag(q.ID, e.creator.ID, "wrong answer"); !errors.Is(err, util.ErrInvalidState) {
			t.Errorf("err = %v, want invalid state", err)
		}
	})

	t.Run("student can only flag visible completed questions", func(t *testing.T) {
		q := e.createQuestion(t)
		e.toPendingCreator(t, q.ID)
		e.toPendingExplainer(t, q.ID)
		e.toCompleted(t, q.ID)

		// 未上架不可标
		if _, err := e.flags.RaiseFlag(q.ID, e.student.ID, "typo"); !errors.Is(err, util.ErrInvalidState) {
			t.Errorf("err = %v, want invalid state", err)
		}

		if _, err := e.workflow.ToggleVisibility(q.ID, e.processor.ID); err != nil {
			t.Fatal(err)
		}
		got, err := e.flags.RaiseFlag(q.ID, e.student.ID, "typo in option B")
		if err != nil {
			t.Fatalf("student flag: %v", err)
		}
		if got.Status != model.StatusCompleted {
			t.Errorf("student flag moved status to %s, should stay completed", got.Status)
		}
		if !got.IsFlagged || got.FlagType != model.FlagStudent || got.FlagStatus != model.FlagStatusPending {
			t.Errorf("flag block = %+v, want open pending student flag", got)
		}
	})

	t.Run("processor cannot raise flags", func(t *testing.T) {
		q := e.createQuestion(t)
		if _, err := e.flags.RaiseFlag(q.ID, e.processor.ID, "meh"); !errors.Is(err, util.ErrAccessDenied) {
			t.Errorf("err = %v, want access denied", err)
		}
	})

	t.Run("one open flag at a time", func(t *testing.T) {
		q := e.createQuestion(t)
		e.toPendingCreator(t, q.ID)
		if _, err := e.flags.RaiseFlag(q.ID, e.creator.ID, "first"); err != nil {
			t.Fatal(err)
		}
		if _, err := e.flags.RaiseFlag(q.ID, e.creator.ID, "second"); !errors.Is(err, util.ErrInvalidState) {
			t.Errorf("err = %v, want invalid state for second flag", err)
		}
	})
}

// 创题人质疑全链路：标记→裁决通过→采集人修订→审批送回创题
func TestCreatorFlagCorrectionFlow(t *testing.T) {
	e := newTestEnv(t)
	q := e.createQuestion(t)
	e.toPendingCreator(t, q.ID)

	got, err := e.flags.RaiseFlag(q.ID, e.creator.ID, "answer key is wrong")
	if err != nil {
		t.Fatalf("raise: %v", err)
	}
	if got.Status != model.StatusPendingProcessor {
		t.Fatalf("status = %s, want pending_processor", got.Status)
	}

	got, err = e.flags.ReviewFlag(q.ID, e.processor.ID, true, "")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if got.Status != model.StatusPendingGatherer {
		t.Fatalf("status = %s, want pending_gatherer (original corrector)", got.Status)
	}
	if !got.IsFlagged || got.FlagStatus != model.FlagStatusApproved {
		t.Fatal("flag should stay open and approved while awaiting correction")
	}

	got, err = e.flags.CorrectAfterFlag(q.ID, e.gatherer.ID, &QuestionContent{CorrectAnswer: "B"})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if got.Status != model.StatusPendingProcessor {
		t.Fatalf("status = %s, want pending_processor", got.Status)
	}
	if got.IsFlagged || got.FlagStatus != model.FlagStatusNone {
		t.Error("open flag should be cleared after correction")
	}
	if got.FlagType != model.FlagCreator {
		t.Error("flag type must survive correction as routing memory")
	}
	if got.CorrectAnswer != "B" {
		t.Errorf("correction not applied, answer = %s", got.CorrectAnswer)
	}

	got, err = e.workflow.Approve(q.ID, e.processor.ID, 0)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != model.StatusPendingCreator {
		t.Errorf("status = %s, want pending_creator (back to flag raiser's next stage)", got.Status)
	}
	if got.FlagType != model.FlagNone {
		t.Error("flag type should be consumed by the routing approval")
	}
}

// 解析人质疑：修订后审批必须送回解析而不是创题
func TestExplainerFlagRoutesBackToExplainer(t *testing.T) {
	e := newTestEnv(t)
	q := e.createQuestion(t)
	e.toPendingCreator(t, q.ID)
	e.toPendingExplainer(t, q.ID)

	if _, err := e.flags.RaiseFlag(q.ID, e.explainer.ID, "unsolvable as written"); err != nil {
		t.Fatal(err)
	}
	got, err := e.flags.ReviewFlag(q.ID, e.processor.ID, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusPendingExplainer {
		t.Fatalf("status = %s, want pending_explainer (explainer is its own corrector)", got.Status)
	}

	got, err = e.flags.CorrectAfterFlag(q.ID, e.explainer.ID, nil)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}

	got, err = e.workflow.Approve(q.ID, e.processor.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusPendingExplainer {
		t.Errorf("status = %s, want pending_explainer", got.Status)
	}
}

// 标记被驳回后：提出人照常提交，审批路由如同从未有过标记
func TestRejectedFlagRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	q := e.createQuestion(t)
	e.toPendingCreator(t, q.ID)

	if _, err := e.flags.RaiseFlag(q.ID, e.creator.ID, "dubious"); err != nil {
		t.Fatal(err)
	}

	if _, err := e.flags.ReviewFlag(q.ID, e.processor.ID, false, ""); !errors.Is(err, util.ErrValidation) {
		t.Errorf("rejecting without reason err = %v, want validation", err)
	}

	got, err := e.flags.ReviewFlag(q.ID, e.processor.ID, false, "flag is unfounded")
	if err != nil {
		t.Fatalf("reject flag: %v", err)
	}
	if got.Status != model.StatusPendingCreator {
		t.Fatalf("status = %s, want pending_creator (raiser's own stage)", got.Status)
	}
	if got.IsFlagged || got.FlagStatus != model.FlagStatusRejected {
		t.Fatal("rejected flag should be closed with rejected status")
	}
	if got.FlagType != model.FlagCreator {
		t.Error("flag type kept for raiser's context")
	}

	if _, err := e.workflow.SubmitByCreator(q.ID, e.creator.ID, nil); err != nil {
		t.Fatal(err)
	}
	got, err = e.workflow.Approve(q.ID, e.processor.ID, e.explainer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusPendingExplainer {
		t.Errorf("status = %s, want pending_explainer — rejected flag must not hijack routing", got.Status)
	}
}

func TestReviewFlagIdempotence(t *testing.T) {
	e := newTestEnv(t)
	q := e.createQuestion(t)
	e.toPendingCreator(t, q.ID)

	if _, err := e.flags.RaiseFlag(q.ID, e.creator.ID, "bad"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.flags.ReviewFlag(q.ID, e.processor.ID, true, ""); err != nil {
		t.Fatal(err)
	}

	// 重复裁决同一标记必须失败
	if _, err := e.flags.ReviewFlag(q.ID, e.processor.ID, true, ""); !errors.Is(err, util.ErrInvalidState) {
		t.Errorf("second review err = %v, want invalid state", err)
	}
	if _, err := e.flags.ReviewFlag(q.ID, e.processor.ID, false, "nope"); !errors.Is(err, util.ErrInvalidState) {
		t.Errorf("review after approval err = %v, want invalid state", err)
	}
}

// 申诉链路：修题人不服→审核员驳回申诉→标记恢复
func TestDisputeAndCounterReject(t *testing.T) {
	e := newTestEnv(t)
	q := e.createQuestion(t)
	e.toPendingCreator(t, q.ID)

	if _, err := e.flags.RaiseFlag(q.ID, e.creator.ID, "claims answer is wrong"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.flags.ReviewFlag(q.ID, e.processor.ID, true, ""); err != nil {
		t.Fatal(err)
	}

	t.Run("only corrector can dispute", func(t *testing.T) {
		if _, err := e.flags.DisputeFlagByCorrector(q.ID, e.creator.ID, "I disagree"); !errors.Is(err, util.ErrAccessDenied) {
			t.Errorf("err = %v, want access denied", err)
		}
	})

	got, err := e.flags.DisputeFlagByCorrector(q.ID, e.gatherer.ID, "the answer is correct as published")
	if err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if got.Status != model.StatusPendingProcessor {
		t.Fatalf("status = %s, want pending_processor", got.Status)
	}
	if got.IsFlagged {
		t.Error("dispute should suspend the open flag")
	}
	if got.FlagStatus != model.FlagStatusApproved || got.FlagRejectionReason == "" {
		t.Error("dispute must keep approval and record the corrector's objection")
	}

	got, err = e.flags.CounterRejectDispute(q.ID, e.processor.ID)
	if err != nil {
		t.Fatalf("counter-reject: %v", err)
	}
	if !got.IsFlagged || got.FlagStatus != model.FlagStatusApproved {
		t.Error("counter-reject must restore the open approved flag")
	}
	if got.FlagRejectionReason != "" {
		t.Error("objection should be cleared once overruled")
	}
	if got.Status != model.StatusPendingGatherer {
		t.Errorf("status = %s, want pending_gatherer (back to corrector)", got.Status)
	}

	// 恢复后没有待处理申诉
	if _, err := e.flags.CounterRejectDispute(q.ID, e.processor.ID); !errors.Is(err, util.ErrInvalidState) {
		t.Errorf("second counter-reject err = %v, want invalid state", err)
	}
}

// 学生标记修订后走完整复审链：采集→创题→解析→完成
func TestStudentFlagFullReReview(t *testing.T) {
	e := newTestEnv(t)
	q := e.createQuestion(t)
	e.toPendingCreator(t, q.ID)
	e.toPendingExplainer(t, q.ID)
	e.toCompleted(t, q.ID)
	if _, err := e.workflow.ToggleVisibility(q.ID, e.processor.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := e.flags.RaiseFlag(q.ID, e.student.ID, "option C is also correct"); err != nil {
		t.Fatal(err)
	}
	got, err := e.flags.ReviewFlag(q.ID, e.processor.ID, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusPendingGatherer {
		t.Fatalf("status = %s, want pending_gatherer", got.Status)
	}

	got, err = e.flags.CorrectAfterFlag(q.ID, e.gatherer.ID, &QuestionContent{
		Options: []model.QuestionOption{
			{Label: "A", Text: "only correct"},
			{Label: "B", Text: "clearly wrong"},
			{Label: "C", Text: "now clearly wrong"},
			{Label: "D", Text: "wrong"},
		},
	})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}

	// 解析早已填写：完成规则优先级最高，修订后的审批直接收尾
	got, err = e.workflow.Approve(q.ID, e.processor.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("status = %s, want completed (explanation present wins)", got.Status)
	}
}

func TestCorrectAfterFlagRequiresApprovedFlag(t *testing.T) {
	e := newTestEnv(t)
	q := e.createQuestion(t)

	if _, err := e.flags.CorrectAfterFlag(q.ID, e.gatherer.ID, nil); !errors.Is(err, util.ErrInvalidState) {
		t.Errorf("err = %v, want invalid state", err)
	}
}
