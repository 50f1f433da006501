// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-appgen-ai-api/internal/domain/entity"
)

// AppFilter 应用过滤条件
type AppFilter struct {
	OwnerID     string
	Name        string
	CodeGenType entity.CodeGenType
	// MinPriority 只返回优先级不低于该值的应用（精选列表使用）
	MinPriority *int
}

// AppRepository 应用仓储接口
type AppRepository interface {
	// Create 创建应用
	Create(ctx context.Context, app *entity.App) error

	// GetByID 根据 ID 获取应用
	GetByID(ctx context.Context, id string) (*entity.App, error)

	// GetByDeployKey 根据部署标识获取应用
	GetByDeployKey(ctx context.Context, deployKey string) (*entity.App, error)

	// Update 更新应用
	Update(ctx context.Context, app *entity.App) error

	// Delete 删除应用
	Delete(ctx context.Context, id string) error

	// List 获取应用列表
	List(ctx context.Context, filter *AppFilter, pagination Pagination) (*PagedResult[*entity.App], error)

	// UpdateDeployInfo 更新部署信息
	UpdateDeployInfo(ctx context.Context, id, deployKey string) error

	// UpdateCover 更新封面
	UpdateCover(ctx context.Context, id, coverURL string) error
}
