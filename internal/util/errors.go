package util

import (
	"errors"
	"fmt"
)

// 工作流错误分类。各服务用 fmt.Errorf("%w: ...") 包装补充细节，
// controller 层统一用 errors.Is 映射为HTTP状态码。
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrAccessDenied = errors.New("access denied")
	ErrInactiveUser = errors.New("user is not active")
	ErrConflict     = errors.New("version conflict")

	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

func InvalidStatef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidState}, args...)...)
}

func AccessDeniedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrAccessDenied}, args...)...)
}
