package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/internal/util"
	"qbank_review_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// WorkflowService 题目审核流转的核心入口，每个操作都是一次
// 读-改-写，状态变化与历史追加同事务提交
type WorkflowService struct {
	Questions *repository.QuestionRepository
	Users     *repository.UserRepository
	Taxonomy  *TaxonomyService
	Assign    *AssignmentService
	DB        *gorm.DB
}

func NewWorkflowService(
	questions *repository.QuestionRepository,
	users *repository.UserRepository,
	taxonomy *TaxonomyService,
	assign *AssignmentService,
	db *gorm.DB,
) *WorkflowService {
	return &WorkflowService{
		Questions: questions,
		Users:     users,
		Taxonomy:  taxonomy,
		Assign:    assign,
		DB:        db,
	}
}

type CreateQuestionRequest struct {
	ExamID            uint                   `json:"examId" binding:"required"`
	SubjectID         uint                   `json:"subjectId" binding:"required"`
	TopicID           uint                   `json:"topicId" binding:"required"`
	QuestionText      string                 `json:"questionText" binding:"required"`
	QuestionType      model.QuestionType     `json:"questionType"`
	Options           []model.QuestionOption `json:"options"`
	CorrectAnswer     string                 `json:"correctAnswer"`
	DiagramURL        string                 `json:"diagramUrl"`
	AssignedProcessor uint                   `json:"assignedProcessor" binding:"required"`
	// ImmediateApprove 仅超级管理员可用，创建即完成
	ImmediateApprove bool `json:"immediateApprove"`
}

func (s *WorkflowService) findQuestion(id string) (*model.Question, error) {
	q, err := s.Questions.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundf("question %s", id)
		}
		return nil, err
	}
	return q, nil
}

// CreateQuestion 采集人或超级管理员建题，必须带可用的审核人指派
func (s *WorkflowService) CreateQuestion(actorID uint, req CreateQuestionRequest) (*model.Question, error) {
	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.Gatherer && !actor.IsSuperadmin() {
		return nil, util.AccessDeniedf("only gatherers can create questions")
	}
	if req.ImmediateApprove && !actor.IsSuperadmin() {
		return nil, util.AccessDeniedf("immediate approval requires superadmin")
	}

	if err := s.Taxonomy.ValidateAndClassify(req.ExamID, req.SubjectID, req.TopicID); err != nil {
		return nil, err
	}

	processor, err := s.Users.FindByID(req.AssignedProcessor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundf("processor %d", req.AssignedProcessor)
		}
		return nil, err
	}
	if !processor.IsActive() {
		return nil, util.ErrInactiveUser
	}
	if processor.Role != model.Processor {
		return nil, util.Validationf("assigned processor must hold the processor role")
	}

	qType := req.QuestionType
	if qType == "" {
		qType = model.TypeMCQ
	}

	var options json.RawMessage
	if len(req.Options) > 0 {
		options, err = json.Marshal(req.Options)
		if err != nil {
			return nil, err
		}
	}

	q := &model.Question{
		ExamID:            req.ExamID,
		SubjectID:         req.SubjectID,
		TopicID:           req.TopicID,
		QuestionText:      req.QuestionText,
		QuestionType:      qType,
		Options:           options,
		CorrectAnswer:     req.CorrectAnswer,
		DiagramURL:        req.DiagramURL,
		Status:            model.StatusPendingProcessor,
		CreatedBy:         actor.ID,
		LastModifiedBy:    actor.ID,
		AssignedProcessor: processor.ID,
		LastActionRole:    actor.Role,
		LastActionKind:    model.ActionCreated,
		Version:           1,
	}

	if err := validateMCQ(q); err != nil {
		return nil, err
	}

	if req.ImmediateApprove {
		q.Status = model.StatusCompleted
		q.ApprovedBy = actor.ID
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Questions.Create(tx, q); err != nil {
			return err
		}
		if err := s.Questions.AppendHistory(tx, &model.QuestionHistory{
			QuestionID:  q.ID,
			Action:      model.ActionCreated,
			PerformedBy: actor.ID,
			Role:        actor.Role,
		}); err != nil {
			return err
		}
		if req.ImmediateApprove {
			return s.Questions.AppendHistory(tx, &model.QuestionHistory{
				QuestionID:  q.ID,
				Action:      model.ActionApproved,
				PerformedBy: actor.ID,
				Role:        actor.Role,
				Note:        "created with immediate approval",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionCreated, string(q.Status))
	return q, nil
}

// Approve 审核通过，目标状态由有序规则表计算，可顺带指派下一环节审校人。
// 每次成功审批都会清掉当前可见的标记状态。
func (s *WorkflowService) Approve(questionID string, actorID, assigneeID uint) (*model.Question, error) {
	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if err := requireProcessor(q, actor); err != nil {
		return nil, err
	}
	if q.Status != model.StatusPendingProcessor {
		return nil, util.InvalidStatef("cannot approve question in status %s", q.Status)
	}

	target, rule, consumesFlag := nextStatusOnApprove(q)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Assign.Resolve(tx, target, assigneeID, q); err != nil {
			return err
		}

		// 审批总是解决掉当前可见的标记
		q.IsFlagged = false
		q.FlagStatus = model.FlagStatusNone
		q.FlagReason = ""
		q.FlaggedBy = 0
		q.FlagReviewedBy = 0
		q.FlagRejectionReason = ""
		if consumesFlag {
			q.FlagType = model.FlagNone
		}

		q.ApprovedBy = actor.ID
		q.RejectedBy = 0
		q.RejectionReason = ""
		q.Status = target

		return applyTransition(tx, s.Questions, q, actor, model.ActionApproved, fmt.Sprintf("routed to %s", target))
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionApproved+":"+rule, string(target))
	return q, nil
}

// Reject 仅能从待审核状态驳回，题目进入终态直至采集人修订重提
func (s *WorkflowService) Reject(questionID string, actorID uint, reason string) (*model.Question, error) {
	if reason == "" {
		return nil, util.Validationf("rejection reason is required")
	}

	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if err := requireProcessor(q, actor); err != nil {
		return nil, err
	}
	if q.Status != model.StatusPendingProcessor {
		return nil, util.InvalidStatef("cannot reject question in status %s", q.Status)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.Status = model.StatusRejected
		q.RejectedBy = actor.ID
		q.RejectionReason = reason
		q.ApprovedBy = 0
		return applyTransition(tx, s.Questions, q, actor, model.ActionRejected, reason)
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionRejected, string(model.StatusRejected))
	return q, nil
}

// SubmitByCreator 创题人交回审核。无内容增量时跳过内容校验
func (s *WorkflowService) SubmitByCreator(questionID string, actorID uint, content *QuestionContent) (*model.Question, error) {
	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if err := requireCreator(q, actor); err != nil {
		return nil, err
	}
	if q.Status != model.StatusPendingCreator {
		return nil, util.InvalidStatef("cannot submit question in status %s", q.Status)
	}

	changed, err := applyContent(q, content)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := validateMCQ(q); err != nil {
			return nil, err
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.Status = model.StatusPendingProcessor
		return applyTransition(tx, s.Questions, q, actor, model.ActionSubmitted, "")
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionSubmitted, string(model.StatusPendingProcessor))
	return q, nil
}

// SubmitByExplainer 解析人交回审核，可不带解析（审批后会留在解析阶段）
func (s *WorkflowService) SubmitByExplainer(questionID string, actorID uint, explanation string) (*model.Question, error) {
	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if err := requireExplainer(q, actor); err != nil {
		return nil, err
	}
	if q.Status != model.StatusPendingExplainer {
		return nil, util.InvalidStatef("cannot submit question in status %s", q.Status)
	}

	if explanation != "" {
		q.Explanation = explanation
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.Status = model.StatusPendingProcessor
		return applyTransition(tx, s.Questions, q, actor, model.ActionSubmitted, "")
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionSubmitted, string(model.StatusPendingProcessor))
	return q, nil
}

// AddExplanation 解析人填写解析并交回审核，审批时命中完成规则
func (s *WorkflowService) AddExplanation(questionID string, actorID uint, explanation, solutionVideoURL string) (*model.Question, error) {
	if explanation == "" {
		return nil, util.Validationf("explanation is required")
	}

	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if err := requireExplainer(q, actor); err != nil {
		return nil, err
	}
	if q.Status != model.StatusPendingExplainer {
		return nil, util.InvalidStatef("cannot add explanation in status %s", q.Status)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.Explanation = explanation
		if solutionVideoURL != "" {
			q.SolutionVideoURL = solutionVideoURL
		}
		q.Status = model.StatusPendingProcessor
		return applyTransition(tx, s.Questions, q, actor, model.ActionExplanationAdded, "")
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionExplanationAdded, string(model.StatusPendingProcessor))
	return q, nil
}

// ResubmitByGatherer 被驳回的题目由其采集人修订后重新入列
func (s *WorkflowService) ResubmitByGatherer(questionID string, actorID uint, content *QuestionContent) (*model.Question, error) {
	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if q.Status != model.StatusRejected {
		return nil, util.InvalidStatef("cannot resubmit question in status %s", q.Status)
	}
	if !actor.IsSuperadmin() && (actor.Role != model.Gatherer || q.CreatedBy != actor.ID) {
		return nil, util.AccessDeniedf("only the owning gatherer can resubmit question %s", q.ID)
	}

	changed, err := applyContent(q, content)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := validateMCQ(q); err != nil {
			return nil, err
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.Status = model.StatusPendingProcessor
		q.RejectedBy = 0
		q.RejectionReason = ""
		return applyTransition(tx, s.Questions, q, actor, model.ActionResubmitted, "")
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionResubmitted, string(model.StatusPendingProcessor))
	return q, nil
}

// ToggleVisibility 学生可见性开关，仅完成态可切
func (s *WorkflowService) ToggleVisibility(questionID string, actorID uint) (*model.Question, error) {
	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if err := requireProcessor(q, actor); err != nil {
		return nil, err
	}
	if q.Status != model.StatusCompleted {
		return nil, util.InvalidStatef("visibility can only be toggled on completed questions")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.IsVisible = !q.IsVisible
		return applyTransition(tx, s.Questions, q, actor, model.ActionVisibilityToggle, fmt.Sprintf("visible=%t", q.IsVisible))
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionVisibilityToggle, string(q.Status))
	return q, nil
}

func (s *WorkflowService) GetQuestion(id string) (*model.Question, error) {
	return s.findQuestion(id)
}

func (s *WorkflowService) ListQuestions(f repository.QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	return s.Questions.FindMany(f, page, limit)
}

func (s *WorkflowService) ListHistory(questionID string) ([]model.QuestionHistory, error) {
	if _, err := s.findQuestion(questionID); err != nil {
		return nil, err
	}
	return s.Questions.ListHistory(questionID)
}

func (s *WorkflowService) ListComments(questionID string) ([]model.QuestionComment, error) {
	if _, err := s.findQuestion(questionID); err != nil {
		return nil, err
	}
	return s.Questions.ListComments(questionID)
}

// AddComment 审核备注，只追加，对流转无影响
func (s *WorkflowService) AddComment(questionID string, actorID uint, content string) (*model.QuestionComment, error) {
	if content == "" {
		return nil, util.Validationf("comment content is required")
	}
	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findQuestion(questionID); err != nil {
		return nil, err
	}

	comment := &model.QuestionComment{
		QuestionID:  questionID,
		CommentedBy: actor.ID,
		Role:        actor.Role,
		Content:     content,
	}
	if err := s.Questions.AppendComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}
