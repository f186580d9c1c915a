package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/pkg/database"
	"qbank_review_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

var testDBSeq int64

type testEnv struct {
	db        *gorm.DB
	questions *repository.QuestionRepository
	users     *repository.UserRepository
	taxrepo   *repository.TaxonomyRepository

	taxonomy *TaxonomyService
	assign   *AssignmentService
	workflow *WorkflowService
	flags    *FlagService
	variants *VariantService

	exam    *model.Exam
	subject *model.Subject
	topic   *model.Topic

	gatherer  *model.User
	processor *model.User
	creator   *model.User
	explainer *model.User
	student   *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
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

	e := &testEnv{
		db:        db,
		questions: repository.NewQuestionRepository(db),
		users:     repository.NewUserRepository(db),
		taxrepo:   repository.NewTaxonomyRepository(db),
	}
	e.taxonomy = NewTaxonomyService(e.taxrepo)
	e.assign = NewAssignmentService(e.users, e.questions)
	e.workflow = NewWorkflowService(e.questions, e.users, e.taxonomy, e.assign, db)
	e.flags = NewFlagService(e.questions, e.users, db)
	e.variants = NewVariantService(e.questions, e.users, db)

	e.exam = &model.Exam{Name: "National Entrance Exam", Code: "NEE", Status: model.TaxonomyActive}
	if err := db.Create(e.exam).Error; err != nil {
		t.Fatalf("seed exam: %v", err)
	}
	e.subject = &model.Subject{Name: "Physics", Status: model.TaxonomyActive}
	if err := db.Create(e.subject).Error; err != nil {
		t.Fatalf("seed subject: %v", err)
	}
	e.topic = &model.Topic{Name: "Mechanics", SubjectID: e.subject.ID, Status: model.TaxonomyActive}
	if err := db.Create(e.topic).Error; err != nil {
		t.Fatalf("seed topic: %v", err)
	}

	e.gatherer = e.addUser(t, "gatherer", model.Gatherer, model.UserActive)
	e.processor = e.addUser(t, "processor", model.Processor, model.UserActive)
	e.creator = e.addUser(t, "creator", model.Creator, model.UserActive)
	e.explainer = e.addUser(t, "explainer", model.Explainer, model.UserActive)
	e.student = e.addUser(t, "student", model.Student, model.UserActive)

	return e
}

func (e *testEnv) addUser(t *testing.T, name string, role model.UserRole, status model.UserStatus) *model.User {
	t.Helper()
	u := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s%d@test.local", name, atomic.AddInt64(&testDBSeq, 1)),
		Password: "x",
		Role:     role,
		Status:   status,
	}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func mcqOptions() []model.QuestionOption {
	return []model.QuestionOption{
		{Label: "A", Text: "first"},
		{Label: "B", Text: "second"},
		{Label: "C", Text: "third"},
		{Label: "D", Text: "fourth"},
	}
}

// createQuestion 采集人录入一道合法MCQ，落在待审核
func (e *testEnv) createQuestion(t *testing.T) *model.Question {
	t.Helper()
	q, err := e.workflow.CreateQuestion(e.gatherer.ID, CreateQuestionRequest{
		ExamID:            e.exam.ID,
		SubjectID:         e.subject.ID,
		TopicID:           e.topic.ID,
		QuestionText:      "What is the unit of force?",
		Options:           mcqOptions(),
		CorrectAnswer:     "A",
		AssignedProcessor: e.processor.ID,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

// toPendingCreator 审批放行并指派创题人
func (e *testEnv) toPendingCreator(t *testing.T, id string) *model.Question {
	t.Helper()
	q, err := e.workflow.Approve(id, e.processor.ID, e.creator.ID)
	if err != nil {
		t.Fatalf("approve to creator: %v", err)
	}
	if q.Status != model.StatusPendingCreator {
		t.Fatalf("expected pending_creator, got %s", q.Status)
	}
	return q
}

// toPendingExplainer 创题人交回、审批放行并指派解析人
func (e *testEnv) toPendingExplainer(t *testing.T, id string) *model.Question {
	t.Helper()
	if _, err := e.workflow.SubmitByCreator(id, e.creator.ID, nil); err != nil {
		t.Fatalf("creator submit: %v", err)
	}
	q, err := e.workflow.Approve(id, e.processor.ID, e.explainer.ID)
	if err != nil {
		t.Fatalf("approve to explainer: %v", err)
	}
	if q.Status != model.StatusPendingExplainer {
		t.Fatalf("expected pending_explainer, got %s", q.Status)
	}
	return q
}

// toCompleted 解析人填解析、审批收尾
func (e *testEnv) toCompleted(t *testing.T, id string) *model.Question {
	t.Helper()
	if _, err := e.workflow.AddExplanation(id, e.explainer.ID, "because physics", ""); err != nil {
		t.Fatalf("add explanation: %v", err)
	}
	q, err := e.workflow.Approve(id, e.processor.ID, 0)
	if err != nil {
		t.Fatalf("final approve: %v", err)
	}
	if q.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %s", q.Status)
	}
	return q
}

func (e *testEnv) reload(t *testing.T, id string) *model.Question {
	t.Helper()
	q, err := e.questions.FindByID(id)
	if err != nil {
		t.Fatalf("reload question %s: %v", id, err)
	}
	return q
}
