package model

import (
	"time"

	baseModel "wellness_shop/pkg/model"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 后台账号，前台下单不需要登录
type User struct {
	baseModel.BaseModel
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"` // bcrypt 哈希，不返回给前端
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserRole 角色按行授予，有 admin 行即为管理员
type UserRole struct {
	baseModel.BaseModel
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role" json:"userId"`
	Role   string `gorm:"type:varchar(32);not null;uniqueIndex:idx_user_roles_user_role" json:"role"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
