// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"z-appgen-ai-api/internal/domain/entity"
)

// ChatHistoryRepository 对话历史仓储实现
type ChatHistoryRepository struct {
	client *Client
}

// NewChatHistoryRepository 创建对话历史仓储
func NewChatHistoryRepository(client *Client) *ChatHistoryRepository {
	return &ChatHistoryRepository{client: client}
}

// Append 追加一条历史记录
func (r *ChatHistoryRepository) Append(ctx context.Context, record *entity.ChatHistory) error {
	ctx, span := tracer.Start(ctx, "postgres.ChatHistoryRepository.Append")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append chat history: %w", err)
	}
	return nil
}

// LoadRecent 加载最近 limit 条记录，按创建时间倒序返回
func (r *ChatHistoryRepository) LoadRecent(ctx context.Context, appID string, limit int) ([]*entity.ChatHistory, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatHistoryRepository.LoadRecent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var records []*entity.ChatHistory
	if err := db.Where("app_id = ?", appID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load recent chat history: %w", err)
	}
	return records, nil
}

// ListBefore 游标分页：返回 createdAt 早于 before 的记录，按创建时间倒序
func (r *ChatHistoryRepository) ListBefore(ctx context.Context, appID string, before *time.Time, limit int) ([]*entity.ChatHistory, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatHistoryRepository.ListBefore")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Where("app_id = ?", appID)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	var records []*entity.ChatHistory
	if err := query.Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chat history: %w", err)
	}
	return records, nil
}

// DeleteByApp 删除应用的全部历史
func (r *ChatHistoryRepository) DeleteByApp(ctx context.Context, appID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ChatHistoryRepository.DeleteByApp")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.ChatHistory{}, "app_id = ?", appID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chat history: %w", err)
	}
	return nil
}
