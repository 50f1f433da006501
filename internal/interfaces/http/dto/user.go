// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"z-appgen-ai-api/internal/domain/entity"
)

// UserResponse 用户响应
type UserResponse struct {
	ID          string          `json:"id"`
	Account     string          `json:"account"`
	Name        string          `json:"name"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	Role        entity.UserRole `json:"role"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UpdateUserRequest 更新用户资料请求
type UpdateUserRequest struct {
	Name      string `json:"name" binding:"omitempty,max=100"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,max=512"`
}

// ToUserResponse 实体转换为响应
func ToUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Account:     u.Account,
		Name:        u.Name,
		AvatarURL:   u.AvatarURL,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
