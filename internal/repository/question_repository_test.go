package repository

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/util"
	"qbank_review_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var repoDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo%d?mode=memory&cache=shared", atomic.AddInt64(&repoDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedQuestion(t *testing.T, repo *QuestionRepository, mutate func(*model.Question)) *model.Question {
	t.Helper()
	q := &model.Question{
		ExamID:            1,
		SubjectID:         1,
		TopicID:           1,
		QuestionText:      "seed",
		Status:            model.StatusPendingProcessor,
		CreatedBy:         1,
		AssignedProcessor: 2,
		LastActionRole:    model.Gatherer,
		LastActionKind:    model.ActionCreated,
		Version:           1,
	}
	if mutate != nil {
		mutate(q)
	}
	if err := repo.Create(nil, q); err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func TestSaveWithVersion(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	q := seedQuestion(t, repo, nil)

	q.QuestionText = "edited"
	if err := repo.SaveWithVersion(nil, q); err != nil {
		t.Fatalf("save: %v", err)
	}
	if q.Version != 2 {
		t.Errorf("version = %d, want 2", q.Version)
	}

	got, err := repo.FindByID(q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.QuestionText != "edited" || got.Version != 2 {
		t.Errorf("persisted row = %q v%d, want edited v2", got.QuestionText, got.Version)
	}
}

// 两个持有同一读取版本的写入者：后写者必须拿到冲突且不落库
func TestSaveWithVersionConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	seeded := seedQuestion(t, repo, nil)

	first, err := repo.FindByID(seeded.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.FindByID(seeded.ID)
	if err != nil {
		t.Fatal(err)
	}

	first.QuestionText = "first writer"
	if err := repo.SaveWithVersion(nil, first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second.QuestionText = "second writer"
	err = repo.SaveWithVersion(nil, second)
	if !errors.Is(err, util.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if second.Version != 1 {
		t.Errorf("loser's in-memory version = %d, should be restored to 1", second.Version)
	}

	got, err := repo.FindByID(seeded.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.QuestionText != "first writer" {
		t.Errorf("conflicting write leaked: %q", got.QuestionText)
	}
	if got.Version != 2 {
		t.Errorf("version = %d, want 2", got.Version)
	}
}

func TestListHistoryOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	q := seedQuestion(t, repo, nil)

	for _, action := range []string{model.ActionCreated, model.ActionApproved, model.ActionSubmitted} {
		if err := repo.AppendHistory(nil, &model.QuestionHistory{
			QuestionID:  q.ID,
			Action:      action,
			PerformedBy: 1,
			Role:        model.Gatherer,
		}); err != nil {
			t.Fatalf("append %s: %v", action, err)
		}
	}

	history, err := repo.ListHistory(q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("history entries = %d, want 3", len(history))
	}
	// 最近的动作排最前
	if history[0].Action != model.ActionSubmitted || history[2].Action != model.ActionCreated {
		t.Errorf("history order = [%s %s %s], want newest first",
			history[0].Action, history[1].Action, history[2].Action)
	}
}

func TestFindManyFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)

	seedQuestion(t, repo, nil)
	flagged := seedQuestion(t, repo, func(q *model.Question) {
		q.IsFlagged = true
		q.FlagType = model.FlagCreator
		q.FlagStatus = model.FlagStatusPending
	})
	visible := seedQuestion(t, repo, func(q *model.Question) {
		q.Status = model.StatusCompleted
		q.IsVisible = true
	})

	t.Run("flagged only", func(t *testing.T) {
		rows, total, err := repo.FindMany(QuestionFilter{FlaggedOnly: true}, 1, 10)
		if err != nil {
			t.Fatal(err)
		}
		if total != 1 || rows[0].ID != flagged.ID {
			t.Errorf("flagged filter returned %d rows", total)
		}
	})

	t.Run("visible only implies completed", func(t *testing.T) {
		rows, total, err := repo.FindMany(QuestionFilter{VisibleOnly: true}, 1, 10)
		if err != nil {
			t.Fatal(err)
		}
		if total != 1 || rows[0].ID != visible.ID {
			t.Errorf("visible filter returned %d rows", total)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		_, total, err := repo.FindMany(QuestionFilter{Status: model.StatusPendingProcessor}, 1, 10)
		if err != nil {
			t.Fatal(err)
		}
		if total != 2 {
			t.Errorf("pending_processor rows = %d, want 2", total)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		rows, total, err := repo.FindMany(QuestionFilter{}, 1, 2)
		if err != nil {
			t.Fatal(err)
		}
		if total != 3 || len(rows) != 2 {
			t.Errorf("page 1 returned %d of %d rows, want 2 of 3", len(rows), total)
		}
	})
}

func TestAssignExplainerToSiblings(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)

	original := seedQuestion(t, repo, nil)
	unassigned := seedQuestion(t, repo, func(q *model.Question) {
		q.IsVariant = true
		q.OriginalQuestionID = original.ID
	})
	assigned := seedQuestion(t, repo, func(q *model.Question) {
		q.IsVariant = true
		q.OriginalQuestionID = original.ID
		q.AssignedExplainer = 77
	})

	if err := repo.AssignExplainerToSiblings(nil, original.ID, original.ID, 42); err != nil {
		t.Fatalf("assign siblings: %v", err)
	}

	got, _ := repo.FindByID(unassigned.ID)
	if got.AssignedExplainer != 42 {
		t.Errorf("unassigned sibling explainer = %d, want 42", got.AssignedExplainer)
	}
	if got.Version != 2 {
		t.Errorf("sibling version = %d, want bumped to 2", got.Version)
	}

	got, _ = repo.FindByID(assigned.ID)
	if got.AssignedExplainer != 77 {
		t.Errorf("pre-assigned sibling overwritten to %d", got.AssignedExplainer)
	}
}

func TestCountByStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)

	seedQuestion(t, repo, nil)
	seedQuestion(t, repo, nil)
	seedQuestion(t, repo, func(q *model.Question) { q.Status = model.StatusCompleted })

	counts, err := repo.CountByStatus()
	if err != nil {
		t.Fatal(err)
	}
	if counts[string(model.StatusPendingProcessor)] != 2 {
		t.Errorf("pending_processor count = %d, want 2", counts[string(model.StatusPendingProcessor)])
	}
	if counts[string(model.StatusCompleted)] != 1 {
		t.Errorf("completed count = %d, want 1", counts[string(model.StatusCompleted)])
	}
}
