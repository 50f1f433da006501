package codegen

import (
	"context"
	"fmt"

	"z-appgen-ai-api/internal/domain/entity"
)

// Session 一次应用的生成会话，持有会话内存
type Session struct {
	AppID   string
	GenType entity.CodeGenType
	Memory  *ConversationMemory
}

// SessionKey 会话缓存键：{appID}_{genType}
func SessionKey(appID string, genType entity.CodeGenType) string {
	return fmt.Sprintf("%s_%s", appID, genType)
}

// SessionBuilder 会话构建函数，由调用方注入（加载持久化历史等）
type SessionBuilder func(ctx context.Context) (*Session, error)
