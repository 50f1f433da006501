// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-appgen-ai-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户
	Create(ctx context.Context, user *entity.User) error

	// GetByID 根据 ID 获取用户
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByAccount 根据账号获取用户
	GetByAccount(ctx context.Context, account string) (*entity.User, error)

	// ExistsByAccount 检查账号是否已存在
	ExistsByAccount(ctx context.Context, account string) (bool, error)

	// Update 更新用户
	Update(ctx context.Context, user *entity.User) error
}
