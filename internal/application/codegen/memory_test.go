package codegen

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationMemory_Order(t *testing.T) {
	m := NewConversationMemory(10)
	m.AddUserMessage("做一个页面")
	m.AddAIMessage("<html></html>")
	m.AddUserMessage("换个配色")

	msgs := m.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Equal(t, "做一个页面", msgs[0].Content)
	assert.Equal(t, schema.Assistant, msgs[1].Role)
	assert.Equal(t, "换个配色", msgs[2].Content)
}

func TestConversationMemory_WindowTrimsOldest(t *testing.T) {
	m := NewConversationMemory(3)
	m.AddUserMessage("1")
	m.AddAIMessage("2")
	m.AddUserMessage("3")
	m.AddAIMessage("4")

	msgs := m.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "2", msgs[0].Content)
	assert.Equal(t, "4", msgs[2].Content)
	assert.Equal(t, 3, m.Len())
}

func TestConversationMemory_SnapshotIsCopy(t *testing.T) {
	m := NewConversationMemory(10)
	m.AddUserMessage("a")

	snapshot := m.Messages()
	snapshot[0] = schema.UserMessage("mutated")

	assert.Equal(t, "a", m.Messages()[0].Content)
}

func TestConversationMemory_IgnoresNil(t *testing.T) {
	m := NewConversationMemory(10)
	m.Add(nil)
	assert.Equal(t, 0, m.Len())
}

func TestConversationMemory_DefaultWindow(t *testing.T) {
	m := NewConversationMemory(0)
	for i := 0; i < 60; i++ {
		m.AddUserMessage("x")
	}
	assert.Equal(t, 50, m.Len())
}
