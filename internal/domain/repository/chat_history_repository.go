// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"z-appgen-ai-api/internal/domain/entity"
)

// ChatHistoryRepository 对话历史仓储接口
type ChatHistoryRepository interface {
	// Append 追加一条历史记录
	Append(ctx context.Context, record *entity.ChatHistory) error

	// LoadRecent 加载最近 limit 条记录，按创建时间倒序返回（最新在前）
	LoadRecent(ctx context.Context, appID string, limit int) ([]*entity.ChatHistory, error)

	// ListBefore 游标分页：返回 createdAt 早于 before 的记录，按创建时间倒序
	ListBefore(ctx context.Context, appID string, before *time.Time, limit int) ([]*entity.ChatHistory, error)

	// DeleteByApp 删除应用的全部历史
	DeleteByApp(ctx context.Context, appID string) error
}
