package codegen

import (
	"context"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/domain/repository"
	"z-appgen-ai-api/pkg/errors"
	"z-appgen-ai-api/pkg/logger"
)

// Facade 代码生成入口：组合会话缓存、生成器与流处理器。
// HTTP 层走 GenerateStream 推送 SSE，工作流节点走 GenerateBlocking。
type Facade struct {
	cache       *SessionCache
	generator   *Generator
	handler     *StreamHandler
	historyRepo repository.ChatHistoryRepository
	cfg         *config.CodegenConfig
}

// NewFacade 创建代码生成门面
func NewFacade(
	cache *SessionCache,
	generator *Generator,
	handler *StreamHandler,
	historyRepo repository.ChatHistoryRepository,
	cfg *config.Config,
) *Facade {
	return &Facade{
		cache:       cache,
		generator:   generator,
		handler:     handler,
		historyRepo: historyRepo,
		cfg:         &cfg.Codegen,
	}
}

// Session 获取应用的生成会话，未命中缓存时构建并预热会话内存
func (f *Facade) Session(ctx context.Context, app *entity.App) (*Session, error) {
	key := SessionKey(app.ID, app.CodeGenType)
	sess, err := f.cache.GetOrBuild(ctx, key, func(ctx context.Context) (*Session, error) {
		return f.buildSession(ctx, app)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSessionBuildError, "构建生成会话失败")
	}
	return sess, nil
}

// buildSession 构建会话：加载最近的持久化历史，按时间先后灌入会话内存
func (f *Facade) buildSession(ctx context.Context, app *entity.App) (*Session, error) {
	limit := f.cfg.HistoryLoadLimit
	if limit <= 0 {
		limit = 20
	}
	records, err := f.historyRepo.LoadRecent(ctx, app.ID, limit+1)
	if err != nil {
		return nil, err
	}
	// LoadRecent 返回最新在前。最新一条是本轮刚落库的用户消息，
	// 生成器会自行写入会话内存，预载时跳过避免在提示词中出现两次
	if len(records) > 0 {
		records = records[1:]
	}

	memory := NewConversationMemory(f.cfg.MemoryWindow)
	// 倒序遍历恢复时间先后顺序
	for i := len(records) - 1; i >= 0; i-- {
		switch records[i].MessageType {
		case entity.MessageTypeUser:
			memory.AddUserMessage(records[i].Message)
		case entity.MessageTypeAI:
			memory.AddAIMessage(records[i].Message)
		}
	}

	logger.Debug(ctx, "生成会话已构建",
		"app_id", app.ID, "gen_type", string(app.CodeGenType), "history_loaded", len(records))
	return &Session{
		AppID:   app.ID,
		GenType: app.CodeGenType,
		Memory:  memory,
	}, nil
}

// GenerateStream 执行一次流式生成并把 chunk 推送给 emit。
// 调用方需在调用前追加本轮的用户历史记录。
func (f *Facade) GenerateStream(ctx context.Context, app *entity.App, userID, message string, emit ChunkEmitter) (*StreamResult, error) {
	sess, err := f.Session(ctx, app)
	if err != nil {
		return nil, err
	}
	events := f.generator.Stream(ctx, sess, app, message)
	return f.handler.Consume(ctx, app, userID, events, emit), nil
}

// GenerateBlocking 执行一次生成并等待结束，不向外推送 chunk
func (f *Facade) GenerateBlocking(ctx context.Context, app *entity.App, userID, message string) (*StreamResult, error) {
	return f.GenerateStream(ctx, app, userID, message, nil)
}

// InvalidateSession 移除应用的缓存会话（如删除应用时）
func (f *Facade) InvalidateSession(app *entity.App) {
	f.cache.Invalidate(SessionKey(app.ID, app.CodeGenType))
}
