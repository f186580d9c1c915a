package model

import (
	"time"
)

type UserRole string

const (
	Gatherer  UserRole = "gatherer"
	Processor UserRole = "processor"
	Creator   UserRole = "creator"
	Explainer UserRole = "explainer"
	Student   UserRole = "student"
)

type AdminRole string

const (
	AdminNone  AdminRole = ""
	Superadmin AdminRole = "superadmin"
)

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"size:100;unique;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      UserRole   `gorm:"size:20;not null;index" json:"role"`
	AdminRole AdminRole  `gorm:"size:20;default:''" json:"adminRole"`
	Status    UserStatus `gorm:"size:20;default:'active'" json:"status"`
	Language  string     `gorm:"size:10;default:'en'" json:"language"`
	LastLogin time.Time  `gorm:"autoCreateTime" json:"lastLogin"`
	LastSeen  time.Time  `gorm:"autoCreateTime" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// IsSuperadmin 超级管理员绕过所有指派校验
func (u *User) IsSuperadmin() bool {
	return u.AdminRole == Superadmin
}

func (u *User) IsActive() bool {
	return u.Status == UserActive
}
