package service

import (
	"errors"
	"testing"
	"time"

	"qbank_review_backend/internal/config"
	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/util"
)

func newAuthService(e *testEnv) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(e.users, cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEnv(t)
	auth := newAuthService(e)

	user, err := auth.Register(RegisterRequest{
		Name:     "New Gatherer",
		Email:    "new@test.local",
		Password: "longenough",
		Role:     model.Gatherer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Status != model.UserActive {
		t.Errorf("status = %s, want active", user.Status)
	}
	if user.Password == "longenough" {
		t.Error("password stored in plaintext")
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := auth.Register(RegisterRequest{
			Name:     "Clone",
			Email:    "new@test.local",
			Password: "longenough",
			Role:     model.Creator,
		})
		if !errors.Is(err, util.ErrEmailRegistered) {
			t.Errorf("err = %v, want email registered", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := auth.Register(RegisterRequest{
			Name:     "Odd",
			Email:    "odd@test.local",
			Password: "longenough",
			Role:     model.UserRole("janitor"),
		})
		if !errors.Is(err, util.ErrValidation) {
			t.Errorf("err = %v, want validation", err)
		}
	})

	token, err := auth.Login("new@test.local", "longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := util.ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.Gatherer {
		t.Errorf("claims = %+v, want user %d gatherer", claims, user.ID)
	}

	t.Run("wrong password", func(t *testing.T) {
		if _, err := auth.Login("new@test.local", "nope-nope"); !errors.Is(err, util.ErrInvalidCredentials) {
			t.Errorf("err = %v, want invalid credentials", err)
		}
	})

	t.Run("inactive account", func(t *testing.T) {
		user.Status = model.UserSuspended
		if err := e.db.Save(user).Error; err != nil {
			t.Fatal(err)
		}
		if _, err := auth.Login("new@test.local", "longenough"); !errors.Is(err, util.ErrInactiveUser) {
			t.Errorf("err = %v, want inactive user", err)
		}
	})
}

func TestUserSetStatus(t *testing.T) {
	e := newTestEnv(t)
	users := NewUserService(e.users)

	q := e.createQuestion(t)
	e.toPendingCreator(t, q.ID)

	if _, err := users.SetStatus(e.creator.ID, model.UserStatus("frozen")); !errors.Is(err, util.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}

	got, err := users.SetStatus(e.creator.ID, model.UserInactive)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if got.Status != model.UserInactive {
		t.Errorf("status = %s, want inactive", got.Status)
	}

	// 停用后不能再执行流转
	if _, err := e.workflow.SubmitByCreator(q.ID, e.creator.ID, nil); !errors.Is(err, util.ErrInactiveUser) {
		t.Errorf("err = %v, want inactive user", err)
	}
}
