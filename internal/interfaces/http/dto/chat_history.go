// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"z-appgen-ai-api/internal/domain/entity"
)

// ChatMessageRequest 对话生成请求
type ChatMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatHistoryResponse 对话历史单条响应
type ChatHistoryResponse struct {
	ID          string    `json:"id"`
	AppID       string    `json:"app_id"`
	UserID      string    `json:"user_id,omitempty"`
	Message     string    `json:"message"`
	MessageType string    `json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatHistoryListResponse 对话历史列表响应，游标分页。
// NextCursor 为本页最早一条记录的时间，下一页以 before=NextCursor 查询。
type ChatHistoryListResponse struct {
	Items      []*ChatHistoryResponse `json:"items"`
	NextCursor *time.Time             `json:"next_cursor,omitempty"`
	HasMore    bool                   `json:"has_more"`
}

// ToChatHistoryResponse 实体转换为响应
func ToChatHistoryResponse(h *entity.ChatHistory) *ChatHistoryResponse {
	if h == nil {
		return nil
	}
	return &ChatHistoryResponse{
		ID:          h.ID,
		AppID:       h.AppID,
		UserID:      h.UserID,
		Message:     h.Message,
		MessageType: string(h.MessageType),
		CreatedAt:   h.CreatedAt,
	}
}

// ToChatHistoryListResponse 实体列表转换为游标分页响应
func ToChatHistoryListResponse(records []*entity.ChatHistory, limit int) *ChatHistoryListResponse {
	items := make([]*ChatHistoryResponse, 0, len(records))
	for _, r := range records {
		items = append(items, ToChatHistoryResponse(r))
	}
	resp := &ChatHistoryListResponse{
		Items:   items,
		HasMore: limit > 0 && len(records) >= limit,
	}
	if len(records) > 0 {
		cursor := records[len(records)-1].CreatedAt
		resp.NextCursor = &cursor
	}
	return resp
}
