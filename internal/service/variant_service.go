package service

import (
	"encoding/json"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/internal/util"
	"qbank_review_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// VariantService 从已有原题派生变体。变体是独立的题目记录，
// 引用原题并继承其分类与全部审校指派。
type VariantService struct {
	Questions *repository.QuestionRepository
	Users     *repository.UserRepository
	DB        *gorm.DB
}

func NewVariantService(questions *repository.QuestionRepository, users *repository.UserRepository, db *gorm.DB) *VariantService {
	return &VariantService{Questions: questions, Users: users, DB: db}
}

type CreateVariantRequest struct {
	QuestionText  string                 `json:"questionText" binding:"required"`
	Options       []model.QuestionOption `json:"options" binding:"required"`
	CorrectAnswer string                 `json:"correctAnswer" binding:"required"`
	DiagramURL    string                 `json:"diagramUrl"`
}

// CreateVariant 创题人基于原题出变体。变体创建同时就是创题人对原题
// "我做完了"的信号：原题一并回到待审核。
func (s *VariantService) CreateVariant(originalID string, actorID uint, req CreateVariantRequest) (*model.Question, error) {
	actor, err := loadActor(s.Users, actorID)
	if err != nil {
		return nil, err
	}

	original, err := s.Questions.FindByID(originalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.NotFoundf("original question %s", originalID)
		}
		return nil, err
	}
	if original.IsVariant {
		return nil, util.Validationf("cannot derive a variant from another variant")
	}
	if err := requireCreator(original, actor); err != nil {
		return nil, err
	}
	// 变体必须继承一个审核人，没有审核人的原题不能派生
	if original.AssignedProcessor == 0 {
		return nil, util.Validationf("original question has no assigned processor")
	}

	options, err := json.Marshal(req.Options)
	if err != nil {
		return nil, err
	}

	variant := &model.Question{
		ExamID:            original.ExamID,
		SubjectID:         original.SubjectID,
		TopicID:           original.TopicID,
		QuestionText:      req.QuestionText,
		QuestionType:      original.QuestionType,
		Options:           options,
		CorrectAnswer:     req.CorrectAnswer,
		DiagramURL:        req.DiagramURL,
		Status:            model.StatusPendingProcessor,
		IsVariant:         true,
		OriginalQuestionID: original.ID,
		CreatedBy:         actor.ID,
		LastModifiedBy:    actor.ID,
		AssignedProcessor: original.AssignedProcessor,
		AssignedCreator:   original.AssignedCreator,
		AssignedExplainer: original.AssignedExplainer,
		LastActionRole:    actor.Role,
		LastActionKind:    model.ActionApproved,
		Version:           1,
	}

	if err := validateMCQ(variant); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Questions.Create(tx, variant); err != nil {
			return err
		}

		// 变体在创题环节自批通过
		if err := s.Questions.AppendHistory(tx, &model.QuestionHistory{
			QuestionID:  variant.ID,
			Action:      model.ActionVariantCreated,
			PerformedBy: actor.ID,
			Role:        actor.Role,
			Note:        "derived from " + original.ID,
		}); err != nil {
			return err
		}
		if err := s.Questions.AppendHistory(tx, &model.QuestionHistory{
			QuestionID:  variant.ID,
			Action:      model.ActionApproved,
			PerformedBy: actor.ID,
			Role:        actor.Role,
		}); err != nil {
			return err
		}

		// 原题同步回到待审核
		if err := s.Questions.AppendHistory(tx, &model.QuestionHistory{
			QuestionID:  original.ID,
			Action:      model.ActionVariantCreated,
			PerformedBy: actor.ID,
			Role:        actor.Role,
			Note:        "variant " + variant.ID,
		}); err != nil {
			return err
		}
		original.Status = model.StatusPendingProcessor
		return applyTransition(tx, s.Questions, original, actor, model.ActionApproved, "variant created")
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTransition(model.ActionVariantCreated, string(model.StatusPendingProcessor))
	return variant, nil
}

// ListVariants 某原题的全部变体
func (s *VariantService) ListVariants(originalID string) ([]model.Question, error) {
	if _, err := s.Questions.FindByID(originalID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.NotFoundf("original question %s", originalID)
		}
		return nil, err
	}
	return s.Questions.FindVariants(originalID)
}
