// Package codegen 实现代码生成核心：会话缓存、流事件、解析与落盘
package codegen

import (
	"encoding/json"
)

// EventType 生成流事件类型
type EventType string

const (
	EventPartialText EventType = "partial_text"
	EventToolRequest EventType = "tool_request"
	EventToolResult  EventType = "tool_result"
	EventComplete    EventType = "complete"
	EventError       EventType = "error"
)

// StreamEvent 生成流事件。生产者保证以恰好一个 Complete 或 Error 结束，
// 之后关闭通道，不再发送任何事件。
type StreamEvent struct {
	Type EventType

	// Text PartialText 的文本增量
	Text string

	// Tool ToolRequest / ToolResult 的工具调用信息
	Tool *ToolCallInfo

	// Err Error 事件携带的终止错误
	Err error
}

// ToolCallInfo 工具调用信息
type ToolCallInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Args   string `json:"args,omitempty"`
	Output string `json:"output,omitempty"`
}

// 推送给调用方的 chunk 判别类型
const (
	ChunkTypeAIResponse   = "ai_response"
	ChunkTypeToolRequest  = "tool_request"
	ChunkTypeToolExecuted = "tool_executed"
)

type chunkPayload struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Args string `json:"args,omitempty"`
}

// Chunk 将事件编码为推送给调用方的 JSON chunk。
// Complete 和 Error 不产生 chunk，由流处理器转换为终止信号。
func (e StreamEvent) Chunk() ([]byte, bool) {
	switch e.Type {
	case EventPartialText:
		b, err := json.Marshal(chunkPayload{Type: ChunkTypeAIResponse, Data: e.Text})
		if err != nil {
			return nil, false
		}
		return b, true
	case EventToolRequest:
		if e.Tool == nil {
			return nil, false
		}
		b, err := json.Marshal(chunkPayload{
			Type: ChunkTypeToolRequest,
			ID:   e.Tool.ID,
			Name: e.Tool.Name,
			Args: e.Tool.Args,
		})
		if err != nil {
			return nil, false
		}
		return b, true
	case EventToolResult:
		if e.Tool == nil {
			return nil, false
		}
		b, err := json.Marshal(chunkPayload{
			Type: ChunkTypeToolExecuted,
			ID:   e.Tool.ID,
			Name: e.Tool.Name,
			Data: e.Tool.Output,
		})
		if err != nil {
			return nil, false
		}
		return b, true
	default:
		return nil, false
	}
}

// newTextEvent 构造文本增量事件
func newTextEvent(text string) StreamEvent {
	return StreamEvent{Type: EventPartialText, Text: text}
}

// newCompleteEvent 构造完成事件
func newCompleteEvent() StreamEvent {
	return StreamEvent{Type: EventComplete}
}

// newErrorEvent 构造错误事件
func newErrorEvent(err error) StreamEvent {
	return StreamEvent{Type: EventError, Err: err}
}
