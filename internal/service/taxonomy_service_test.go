package service

import (
	"errors"
	"testing"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/util"
)

func TestValidateAndClassify(t *testing.T) {
	e := newTestEnv(t)

	t.Run("all ids required", func(t *testing.T) {
		if err := e.taxonomy.ValidateAndClassify(0, e.subject.ID, e.topic.ID); !errors.Is(err, util.ErrValidation) {
			t.Errorf("err = %v, want validation", err)
		}
	})

	t.Run("unknown exam", func(t *testing.T) {
		if err := e.taxonomy.ValidateAndClassify(999, e.subject.ID, e.topic.ID); !errors.Is(err, util.ErrNotFound) {
			t.Errorf("err = %v, want not found", err)
		}
	})

	t.Run("topic must belong to subject", func(t *testing.T) {
		other, err := e.taxonomy.CreateSubject(SubjectRequest{Name: "Biology"})
		if err != nil {
			t.Fatal(err)
		}
		foreign, err := e.taxonomy.CreateTopic(TopicRequest{Name: "Genetics", SubjectID: other.ID})
		if err != nil {
			t.Fatal(err)
		}
		if err := e.taxonomy.ValidateAndClassify(e.exam.ID, e.subject.ID, foreign.ID); !errors.Is(err, util.ErrValidation) {
			t.Errorf("err = %v, want validation", err)
		}

		// 校验失败不留痕
		var count int64
		e.db.Model(&model.Classification{}).Count(&count)
		if count != 0 {
			t.Errorf("failed validation created %d classification rows", count)
		}
	})

	t.Run("upsert is idempotent", func(t *testing.T) {
		if err := e.taxonomy.ValidateAndClassify(e.exam.ID, e.subject.ID, e.topic.ID); err != nil {
			t.Fatalf("first classify: %v", err)
		}
		if err := e.taxonomy.ValidateAndClassify(e.exam.ID, e.subject.ID, e.topic.ID); err != nil {
			t.Fatalf("second classify: %v", err)
		}

		var count int64
		e.db.Model(&model.Classification{}).Count(&count)
		if count != 1 {
			t.Errorf("classification rows = %d, want 1", count)
		}
	})
}

func TestCreateTopicNeedsSubject(t *testing.T) {
	e := newTestEnv(t)

	if _, err := e.taxonomy.CreateTopic(TopicRequest{Name: "orphan", SubjectID: 424242}); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}

	topic, err := e.taxonomy.CreateTopic(TopicRequest{Name: "Optics", SubjectID: e.subject.ID})
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}

	topics, err := e.taxonomy.ListTopics(e.subject.ID)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, tp := range topics {
		if tp.ID == topic.ID {
			found = true
		}
	}
	if !found {
		t.Error("new topic missing from subject listing")
	}
}
