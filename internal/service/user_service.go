package service

import (
	"errors"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundf("user %d", userID)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(role model.UserRole, status model.UserStatus, page, limit int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Repo.List(role, status, page, limit)
}

// SetStatus 启用/停用账号。停用的账号不能再被指派也不能执行任何流转
func (s *UserService) SetStatus(userID uint, status model.UserStatus) (*model.User, error) {
	switch status {
	case model.UserActive, model.UserInactive, model.UserSuspended:
	default:
		return nil, util.Validationf("unknown user status %s", status)
	}

	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateStatus(user.ID, status); err != nil {
		return nil, err
	}
	user.Status = status
	return user, nil
}
