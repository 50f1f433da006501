package codegen

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeChunk(t *testing.T, b []byte) chunkPayload {
	t.Helper()
	var p chunkPayload
	require.NoError(t, json.Unmarshal(b, &p))
	return p
}

func TestStreamEvent_ChunkAIResponse(t *testing.T) {
	b, ok := newTextEvent("<div>").Chunk()
	require.True(t, ok)

	p := decodeChunk(t, b)
	assert.Equal(t, ChunkTypeAIResponse, p.Type)
	assert.Equal(t, "<div>", p.Data)
}

func TestStreamEvent_ChunkToolRequest(t *testing.T) {
	e := StreamEvent{
		Type: EventToolRequest,
		Tool: &ToolCallInfo{ID: "call-1", Name: ToolWriteFile, Args: `{"path":"a.txt"}`},
	}
	b, ok := e.Chunk()
	require.True(t, ok)

	p := decodeChunk(t, b)
	assert.Equal(t, ChunkTypeToolRequest, p.Type)
	assert.Equal(t, "call-1", p.ID)
	assert.Equal(t, ToolWriteFile, p.Name)
	assert.Equal(t, `{"path":"a.txt"}`, p.Args)
}

func TestStreamEvent_ChunkToolResult(t *testing.T) {
	e := StreamEvent{
		Type: EventToolResult,
		Tool: &ToolCallInfo{ID: "call-1", Name: ToolWriteFile, Output: "写入成功"},
	}
	b, ok := e.Chunk()
	require.True(t, ok)

	p := decodeChunk(t, b)
	assert.Equal(t, ChunkTypeToolExecuted, p.Type)
	assert.Equal(t, "写入成功", p.Data)
}

func TestStreamEvent_TerminalEventsProduceNoChunk(t *testing.T) {
	_, ok := newCompleteEvent().Chunk()
	assert.False(t, ok)

	_, ok = newErrorEvent(errors.New("boom")).Chunk()
	assert.False(t, ok)
}

func TestStreamEvent_ToolEventWithoutInfoProducesNoChunk(t *testing.T) {
	_, ok := StreamEvent{Type: EventToolRequest}.Chunk()
	assert.False(t, ok)
}
