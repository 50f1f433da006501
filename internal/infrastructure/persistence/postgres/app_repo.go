// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/domain/repository"
)

// AppRepository 应用仓储实现
type AppRepository struct {
	client *Client
}

// NewAppRepository 创建应用仓储
func NewAppRepository(client *Client) *AppRepository {
	return &AppRepository{client: client}
}

// Create 创建应用
func (r *AppRepository) Create(ctx context.Context, app *entity.App) error {
	ctx, span := tracer.Start(ctx, "postgres.AppRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(app).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create app: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取应用
func (r *AppRepository) GetByID(ctx context.Context, id string) (*entity.App, error) {
	ctx, span := tracer.Start(ctx, "postgres.AppRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var app entity.App
	if err := db.First(&app, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return &app, nil
}

// GetByDeployKey 根据部署标识获取应用
func (r *AppRepository) GetByDeployKey(ctx context.Context, deployKey string) (*entity.App, error) {
	ctx, span := tracer.Start(ctx, "postgres.AppRepository.GetByDeployKey")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var app entity.App
	if err := db.First(&app, "deploy_key = ?", deployKey).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get app by deploy key: %w", err)
	}
	return &app, nil
}

// Update 更新应用
func (r *AppRepository) Update(ctx context.Context, app *entity.App) error {
	ctx, span := tracer.Start(ctx, "postgres.AppRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(app).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update app: %w", err)
	}
	return nil
}

// Delete 删除应用
func (r *AppRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.AppRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.App{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete app: %w", err)
	}
	return nil
}

// List 获取应用列表
func (r *AppRepository) List(ctx context.Context, filter *repository.AppFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.App], error) {
	ctx, span := tracer.Start(ctx, "postgres.AppRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.App{})

	if filter != nil {
		if filter.OwnerID != "" {
			query = query.Where("owner_id = ?", filter.OwnerID)
		}
		if filter.Name != "" {
			query = query.Where("name LIKE ?", "%"+filter.Name+"%")
		}
		if filter.CodeGenType != "" {
			query = query.Where("code_gen_type = ?", filter.CodeGenType)
		}
		if filter.MinPriority != nil {
			query = query.Where("priority >= ?", *filter.MinPriority)
		}
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count apps: %w", err)
	}

	// 获取列表
	var apps []*entity.App
	if err := query.Order("priority DESC, created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&apps).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}

	return repository.NewPagedResult(apps, total, pagination), nil
}

// UpdateDeployInfo 更新部署信息
func (r *AppRepository) UpdateDeployInfo(ctx context.Context, id, deployKey string) error {
	ctx, span := tracer.Start(ctx, "postgres.AppRepository.UpdateDeployInfo")
	defer span.End()

	db := getDB(ctx, r.client.db)
	now := time.Now()
	updates := map[string]any{
		"deploy_key":  deployKey,
		"deployed_at": now,
	}
	if err := db.Model(&entity.App{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update deploy info: %w", err)
	}
	return nil
}

// UpdateCover 更新封面
func (r *AppRepository) UpdateCover(ctx context.Context, id, coverURL string) error {
	ctx, span := tracer.Start(ctx, "postgres.AppRepository.UpdateCover")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.App{}).Where("id = ?", id).Update("cover", coverURL).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update cover: %w", err)
	}
	return nil
}
