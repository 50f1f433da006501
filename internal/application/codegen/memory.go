package codegen

import (
	"sync"

	"github.com/cloudwego/eino/schema"
)

// ConversationMemory 有序的会话消息窗口，超出窗口后丢弃最早的消息。
// 并发安全：流式生成过程中可能与会话构建并发访问。
type ConversationMemory struct {
	window   int
	mu       sync.Mutex
	messages []*schema.Message
}

// NewConversationMemory 创建会话内存，window 为保留的最大消息条数
func NewConversationMemory(window int) *ConversationMemory {
	if window <= 0 {
		window = 50
	}
	return &ConversationMemory{
		window:   window,
		messages: make([]*schema.Message, 0, window),
	}
}

// AddUserMessage 追加用户消息
func (m *ConversationMemory) AddUserMessage(content string) {
	m.Add(schema.UserMessage(content))
}

// AddAIMessage 追加 AI 回复消息
func (m *ConversationMemory) AddAIMessage(content string) {
	m.Add(schema.AssistantMessage(content, nil))
}

// Add 追加任意消息并裁剪窗口
func (m *ConversationMemory) Add(msg *schema.Message) {
	if msg == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msg)
	if len(m.messages) > m.window {
		m.messages = m.messages[len(m.messages)-m.window:]
	}
}

// Messages 返回当前窗口内消息的快照（按时间先后排序）
func (m *ConversationMemory) Messages() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*schema.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len 返回当前窗口内的消息条数
func (m *ConversationMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
