package codegen

import (
	"context"
	"fmt"
	"strings"

	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/domain/repository"
	"z-appgen-ai-api/pkg/logger"
	"z-appgen-ai-api/pkg/metrics"
)

// ChunkEmitter 把一个 JSON chunk 推送给调用方（如 SSE 写入），
// 返回错误表示调用方已断开，后续 chunk 不再推送。
type ChunkEmitter func(chunk []byte) error

// StreamResult 一次生成流的处理结果
type StreamResult struct {
	// FullText 拼接后的完整 AI 回复
	FullText string
	// SavedDir 解析落盘成功时的生成目录，未落盘为空
	SavedDir string
	// Err 流以 Error 事件终止时的错误
	Err error
}

// StreamHandler 消费生成事件流：把增量推送给调用方、
// 累积完整回复、在流结束后负责解析落盘和历史持久化。
type StreamHandler struct {
	saver       *Saver
	historyRepo repository.ChatHistoryRepository
}

// NewStreamHandler 创建流处理器
func NewStreamHandler(saver *Saver, historyRepo repository.ChatHistoryRepository) *StreamHandler {
	return &StreamHandler{
		saver:       saver,
		historyRepo: historyRepo,
	}
}

// Consume 消费事件通道直至通道关闭。
// 无论调用方是否中途断开，持久化逻辑都会执行：
// Complete 时 html/multi_file 解析落盘（失败只记日志），并追加一条 AI 历史；
// Error 时追加一条包含错误描述的 AI 历史。每次生成恰好产生一条 AI 历史记录。
func (h *StreamHandler) Consume(ctx context.Context, app *entity.App, userID string, events <-chan StreamEvent, emit ChunkEmitter) *StreamResult {
	var (
		builder  strings.Builder
		result   = &StreamResult{}
		emitDead bool
		done     bool
	)

	send := func(e StreamEvent, chunkType string) {
		if emitDead || emit == nil {
			return
		}
		chunk, ok := e.Chunk()
		if !ok {
			return
		}
		if err := emit(chunk); err != nil {
			// 调用方断开后继续消费事件，保证持久化完成
			emitDead = true
			logger.Warn(ctx, "推送生成 chunk 失败，停止推送", "app_id", app.ID, "error", err)
			return
		}
		metrics.CodegenStreamChunks.WithLabelValues(string(app.CodeGenType), chunkType).Inc()
	}

	for e := range events {
		if done {
			continue
		}
		switch e.Type {
		case EventPartialText:
			builder.WriteString(e.Text)
			send(e, ChunkTypeAIResponse)
		case EventToolRequest:
			send(e, ChunkTypeToolRequest)
		case EventToolResult:
			send(e, ChunkTypeToolExecuted)
		case EventComplete:
			done = true
		case EventError:
			done = true
			result.Err = e.Err
		}
	}

	result.FullText = builder.String()

	if result.Err != nil {
		h.appendAIHistory(ctx, app, userID, fmt.Sprintf("生成失败：%v", result.Err))
		return result
	}

	h.persistArtifact(ctx, app, result)
	h.appendAIHistory(ctx, app, userID, result.FullText)
	return result
}

// persistArtifact 对 html / multi_file 解析并落盘，失败只记日志不影响对话
func (h *StreamHandler) persistArtifact(ctx context.Context, app *entity.App, result *StreamResult) {
	if app.CodeGenType == entity.CodeGenTypeVueProject {
		// 工程类型的产物由文件工具直接写入，无需解析
		result.SavedDir = h.saver.ProjectDir(app)
		return
	}

	code, err := ParseGeneratedCode(app.CodeGenType, result.FullText)
	if err != nil {
		logger.Warn(ctx, "生成结果解析失败", "app_id", app.ID, "error", err)
		return
	}
	dir, err := h.saver.Save(app, code)
	if err != nil {
		logger.Warn(ctx, "生成结果落盘失败", "app_id", app.ID, "error", err)
		return
	}
	result.SavedDir = dir
}

func (h *StreamHandler) appendAIHistory(ctx context.Context, app *entity.App, userID, message string) {
	if message == "" {
		message = "（本次生成没有文本输出）"
	}
	record := entity.NewChatHistory(entity.NewID(), app.ID, userID, message, entity.MessageTypeAI)
	if err := h.historyRepo.Append(ctx, record); err != nil {
		logger.Error(ctx, "追加 AI 历史记录失败", err, "app_id", app.ID)
	}
}
