package service

import (
	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/internal/util"
	"qbank_review_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// FlagService 标记/质疑子协议。一道题同一时刻至多一个未决标记；
// FlagType 在标记清除后仍保留，作为下一次审批的路由记忆。
type FlagService struct {
	Questions *repository.QuestionRepository
	Users     *repository.UserRepository
	DB        *gorm.DB
}

func NewFlagService(questions *repository.QuestionRepository, users *repository.UserRepository, db *gorm.DB) *FlagService {
	return &FlagService{Questions: questions, Users: users, DB: db}
}

func (s *FlagService) findQuestion(id string) (*model.Question, error) {
	q, err := s.Questions.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.NotFoundf("question %s", id)
		}
		return nil, err
	}
	return q, nil
}

// RaiseFlag 质疑题目正确性。创题人只能在创题阶段提、解析人在解析阶段提、
// 学生只能对已完成且可见的题提。学生标记不改变题目状态。
func (s *FlagService) RaiseFlag(questionID string, actorID uint, reason string) (*model.Question, error) {
	if reason == "" {
		return nil, util.Validationf("flag reason is required")
	}

	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}

	if q.IsFlagged {
		return nil, util.InvalidStatef("question %s already has an open flag", q.ID)
	}

	var flagType model.FlagType
	switch actor.Role {
	case model.Creator:
		if q.Status != model.StatusPendingCreator {
			return nil, util.InvalidStatef("creators can only flag questions awaiting creation, current status %s", q.Status)
		}
		if err := requireCreator(q, actor); err != nil {
			return nil, err
		}
		flagType = model.FlagCreator
	case model.Explainer:
		if q.Status != model.StatusPendingExplainer {
			return nil, util.InvalidStatef("explainers can only flag questions awaiting explanation, current status %s", q.Status)
		}
		if err := requireExplainer(q, actor); err != nil {
			return nil, err
		}
		flagType = model.FlagExplainer
	case model.Student:
		if q.Status != model.StatusCompleted || !q.IsVisible {
			return nil, util.InvalidStatef("students can only flag completed, visible questions")
		}
		flagType = model.FlagStudent
	default:
		return nil, util.AccessDeniedf("role %s cannot raise flags", actor.Role)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.IsFlagged = true
		q.FlagType = flagType
		q.FlagStatus = model.FlagStatusPending
		q.FlagReason = reason
		q.FlaggedBy = actor.ID
		q.FlagReviewedBy = 0
		q.FlagRejectionReason = ""
		// 学生标记不把完成态拉回流水线
		if flagType != model.FlagStudent {
			q.Status = model.StatusPendingProcessor
		}
		return applyTransition(tx, s.Questions, q, actor, model.ActionFlagged, reason)
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionFlagged, string(q.Status))
	return q, nil
}

// ReviewFlag 审核员裁决标记。approve 送修题阶段并保持标记挂起；
// reject 清标记、记录驳回理由、题目回到提出人自己的阶段供其再争
func (s *FlagService) ReviewFlag(questionID string, actorID uint, approve bool, rejectionReason string) (*model.Question, error) {
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
	if !q.IsFlagged || q.FlagStatus != model.FlagStatusPending {
		return nil, util.InvalidStatef("question %s has no pending flag to review", q.ID)
	}

	if approve {
		target := correctorStage(q)
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			q.FlagStatus = model.FlagStatusApproved
			q.FlagReviewedBy = actor.ID
			q.Status = target
			return applyTransition(tx, s.Questions, q, actor, model.ActionFlagApproved, "")
		})
		if err != nil {
			return nil, err
		}
		monitoring.RecordTransition(model.ActionFlagApproved, string(target))
		return q, nil
	}

	if rejectionReason == "" {
		return nil, util.Validationf("rejection reason is required when rejecting a flag")
	}

	// 驳回后题目回到提出人自己的阶段；学生标记不动完成态
	target := q.Status
	switch q.FlagType {
	case model.FlagCreator:
		target = model.StatusPendingCreator
	case model.FlagExplainer:
		target = model.StatusPendingExplainer
	case model.FlagStudent:
		target = model.StatusCompleted
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.IsFlagged = false
		q.FlagStatus = model.FlagStatusRejected
		q.FlagReviewedBy = actor.ID
		q.FlagRejectionReason = rejectionReason
		// FlagType 保留，供提出人看到被驳回的上下文
		q.Status = target
		return applyTransition(tx, s.Questions, q, actor, model.ActionFlagRejected, rejectionReason)
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionFlagRejected, string(target))
	return q, nil
}

// DisputeFlagByCorrector 修题人不服已批准的标记，不修题而是申诉：
// 清掉挂起的标记但保留理由与类型，题目交回审核员裁决
func (s *FlagService) DisputeFlagByCorrector(questionID string, actorID uint, rejectionReason string) (*model.Question, error) {
	if rejectionReason == "" {
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
	if err := requireCorrector(q, actor); err != nil {
		return nil, err
	}
	if !q.IsFlagged || q.FlagStatus != model.FlagStatusApproved {
		return nil, util.InvalidStatef("question %s has no approved flag to dispute", q.ID)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.IsFlagged = false
		// FlagReason/FlagType 保留作为上下文，FlagStatus 维持 approved 供审核员复核
		q.FlagRejectionReason = rejectionReason
		q.Status = model.StatusPendingProcessor
		return applyTransition(tx, s.Questions, q, actor, model.ActionFlagDisputed, rejectionReason)
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionFlagDisputed, string(model.StatusPendingProcessor))
	return q, nil
}

// CounterRejectDispute 审核员驳回修题人的申诉："上诉失败"，
// 标记恢复为已批准的挂起状态，题目退回修题阶段
func (s *FlagService) CounterRejectDispute(questionID string, actorID uint) (*model.Question, error) {
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
	if q.IsFlagged || q.FlagStatus != model.FlagStatusApproved || q.FlagRejectionReason == "" {
		return nil, util.InvalidStatef("question %s has no disputed flag to restore", q.ID)
	}

	target := correctorStage(q)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.IsFlagged = true
		q.FlagStatus = model.FlagStatusApproved
		q.FlagRejectionReason = ""
		q.Status = target
		return applyTransition(tx, s.Questions, q, actor, model.ActionFlagRestored, "")
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionFlagRestored, string(target))
	return q, nil
}

// CorrectAfterFlag 修题人提交修订。清掉挂起的标记但保留 FlagType ——
// 这是下一次审批正确路由的唯一信号，丢了会把解析人提出的修订错发给创题人
func (s *FlagService) CorrectAfterFlag(questionID string, actorID uint, content *QuestionContent) (*model.Question, error) {
	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.findQuestion(questionID)
	if err != nil {
		return nil, err
	}

	// 解析人标记的修题人是解析人自己
	if q.FlagType == model.FlagExplainer {
		if err := requireExplainer(q, actor); err != nil {
			return nil, err
		}
	} else {
		if err := requireCorrector(q, actor); err != nil {
			return nil, err
		}
	}
	if !q.IsFlagged || q.FlagStatus != model.FlagStatusApproved {
		return nil, util.InvalidStatef("question %s has no approved flag awaiting correction", q.ID)
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
		q.IsFlagged = false
		q.FlagStatus = model.FlagStatusNone
		q.FlagRejectionReason = ""
		// FlagType 保留
		q.Status = model.StatusPendingProcessor
		return applyTransition(tx, s.Questions, q, actor, model.ActionFlagCorrected, "")
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionFlagCorrected, string(model.StatusPendingProcessor))
	return q, nil
}
