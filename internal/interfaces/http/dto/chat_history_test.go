package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-appgen-ai-api/internal/domain/entity"
)

func historyAt(id string, at time.Time) *entity.ChatHistory {
	return &entity.ChatHistory{
		ID:          id,
		AppID:       "app-1",
		UserID:      "user-1",
		Message:     "msg-" + id,
		MessageType: entity.MessageTypeUser,
		CreatedAt:   at,
	}
}

func TestToChatHistoryListResponse_CursorFromOldestRecord(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// 仓储按创建时间倒序返回，最后一条是本页最早的记录
	records := []*entity.ChatHistory{
		historyAt("3", base.Add(2*time.Minute)),
		historyAt("2", base.Add(time.Minute)),
		historyAt("1", base),
	}

	resp := ToChatHistoryListResponse(records, 3)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "3", resp.Items[0].ID)
	assert.True(t, resp.HasMore)
	require.NotNil(t, resp.NextCursor)
	assert.Equal(t, base, *resp.NextCursor)
}

func TestToChatHistoryListResponse_PartialPageHasNoMore(t *testing.T) {
	records := []*entity.ChatHistory{
		historyAt("1", time.Now()),
	}

	resp := ToChatHistoryListResponse(records, 20)
	assert.False(t, resp.HasMore)
	assert.NotNil(t, resp.NextCursor)
}

func TestToChatHistoryListResponse_Empty(t *testing.T) {
	resp := ToChatHistoryListResponse(nil, 20)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	assert.False(t, resp.HasMore)
	assert.Nil(t, resp.NextCursor)
}
