// Package entity 定义领域实体
package entity

import (
	"time"
)

// MessageType 对话消息类型
type MessageType string

const (
	MessageTypeUser MessageType = "user"
	MessageTypeAI   MessageType = "ai"
)

// ChatHistory 对话历史记录，一行对应一轮中的一条消息
type ChatHistory struct {
	ID          string      `json:"id" gorm:"type:uuid;primaryKey"`
	AppID       string      `json:"app_id" gorm:"type:uuid;index;not null"`
	UserID      string      `json:"user_id" gorm:"type:uuid;index"`
	Message     string      `json:"message" gorm:"type:text;not null"`
	MessageType MessageType `json:"message_type" gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName 指定表名
func (ChatHistory) TableName() string {
	return "chat_histories"
}

// NewChatHistory 创建历史记录
func NewChatHistory(id, appID, userID, message string, msgType MessageType) *ChatHistory {
	return &ChatHistory{
		ID:          id,
		AppID:       appID,
		UserID:      userID,
		Message:     message,
		MessageType: msgType,
		CreatedAt:   time.Now(),
	}
}
