package service

import (
	"errors"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/internal/util"
	"qbank_review_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignmentService 负责把审核人挂到题目上。
// 指派一经写入不再覆盖；候选人角色与目标状态不匹配时放弃指派而不报错，
// 因为主流转（状态变化）比次要流转（指派）更重要。
type AssignmentService struct {
	Users     *repository.UserRepository
	Questions *repository.QuestionRepository
}

func NewAssignmentService(users *repository.UserRepository, questions *repository.QuestionRepository) *AssignmentService {
	return &AssignmentService{Users: users, Questions: questions}
}

// requiredRole 目标状态对应的审核角色，其余状态不需要指派
func requiredRole(nextStatus model.QuestionStatus) (model.UserRole, bool) {
	switch nextStatus {
	case model.StatusPendingCreator:
		return model.Creator, true
	case model.StatusPendingExplainer:
		return model.Explainer, true
	default:
		return "", false
	}
}

// Resolve 在流转事务内尝试指派。改的是 q 的内存字段，落库由调用方的
// SaveWithVersion 统一完成；兄弟变体的批量指派直接走 tx。
func (s *AssignmentService) Resolve(tx *gorm.DB, nextStatus model.QuestionStatus, candidateID uint, q *model.Question) error {
	if candidateID == 0 {
		return nil
	}

	role, needed := requiredRole(nextStatus)
	if !needed {
		return nil
	}

	candidate, err := s.Users.FindByID(candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NotFoundf("assignee %d", candidateID)
		}
		return err
	}
	if !candidate.IsActive() {
		return util.ErrInactiveUser
	}

	if candidate.Role != role {
		// 角色不匹配时放弃指派，调用方可能传了过期的候选人
		logger.Log.Warn("assignment dropped: role mismatch",
			zap.String("question", q.ID),
			zap.Uint("candidate", candidateID),
			zap.String("want", string(role)),
			zap.String("got", string(candidate.Role)))
		return nil
	}

	switch role {
	case model.Creator:
		if q.AssignedCreator != 0 {
			return nil
		}
		q.AssignedCreator = candidate.ID
	case model.Explainer:
		if q.AssignedExplainer != 0 {
			return nil
		}
		q.AssignedExplainer = candidate.ID

		// 同一原题下的变体共享解析人，保证解析人队列完整
		rootID := q.ID
		if q.IsVariant {
			rootID = q.OriginalQuestionID
		}
		if err := s.Questions.AssignExplainerToSiblings(tx, rootID, q.ID, candidate.ID); err != nil {
			return err
		}
	}

	return nil
}
