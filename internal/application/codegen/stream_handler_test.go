package codegen

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-appgen-ai-api/internal/domain/entity"
)

// fakeHistoryRepo 内存版历史仓储
type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []*entity.ChatHistory
	fail    bool
}

func (r *fakeHistoryRepo) Append(_ context.Context, record *entity.ChatHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("db down")
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeHistoryRepo) LoadRecent(_ context.Context, appID string, limit int) ([]*entity.ChatHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatHistory
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].AppID == appID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) ListBefore(_ context.Context, appID string, before *time.Time, limit int) ([]*entity.ChatHistory, error) {
	return r.LoadRecent(context.Background(), appID, limit)
}

func (r *fakeHistoryRepo) DeleteByApp(_ context.Context, appID string) error {
	return nil
}

func (r *fakeHistoryRepo) all() []*entity.ChatHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.ChatHistory, len(r.records))
	copy(out, r.records)
	return out
}

func eventsFrom(evts ...StreamEvent) <-chan StreamEvent {
	ch := make(chan StreamEvent, len(evts))
	for _, e := range evts {
		ch <- e
	}
	close(ch)
	return ch
}

func TestStreamHandler_ConsumeCompleteSavesAndAppendsHistory(t *testing.T) {
	root := t.TempDir()
	repo := &fakeHistoryRepo{}
	handler := NewStreamHandler(NewSaver(root), repo)
	app := entity.NewApp("app-1", "user-1", "落地页", entity.CodeGenTypeHTML)

	var chunks []chunkPayload
	emit := func(b []byte) error {
		var p chunkPayload
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		chunks = append(chunks, p)
		return nil
	}

	events := eventsFrom(
		newTextEvent("```html\n<html>"),
		newTextEvent("<body>hi</body></html>\n```"),
		newCompleteEvent(),
	)
	result := handler.Consume(context.Background(), app, "user-1", events, emit)

	require.NoError(t, result.Err)
	assert.Equal(t, "```html\n<html><body>hi</body></html>\n```", result.FullText)
	assert.Equal(t, filepath.Join(root, "html_app-1"), result.SavedDir)

	b, err := os.ReadFile(filepath.Join(result.SavedDir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html><body>hi</body></html>", string(b))

	require.Len(t, chunks, 2)
	assert.Equal(t, ChunkTypeAIResponse, chunks[0].Type)

	records := repo.all()
	require.Len(t, records, 1)
	assert.Equal(t, entity.MessageTypeAI, records[0].MessageType)
	assert.Equal(t, result.FullText, records[0].Message)
}

func TestStreamHandler_ConsumeErrorAppendsFailureHistory(t *testing.T) {
	repo := &fakeHistoryRepo{}
	handler := NewStreamHandler(NewSaver(t.TempDir()), repo)
	app := entity.NewApp("app-2", "user-1", "落地页", entity.CodeGenTypeHTML)

	events := eventsFrom(
		newTextEvent("部分输出"),
		newErrorEvent(errors.New("model unavailable")),
	)
	result := handler.Consume(context.Background(), app, "user-1", events, nil)

	require.Error(t, result.Err)
	assert.Empty(t, result.SavedDir)

	records := repo.all()
	require.Len(t, records, 1)
	assert.Equal(t, entity.MessageTypeAI, records[0].MessageType)
	assert.Contains(t, records[0].Message, "生成失败")
	assert.Contains(t, records[0].Message, "model unavailable")
}

func TestStreamHandler_EmitFailureKeepsConsuming(t *testing.T) {
	root := t.TempDir()
	repo := &fakeHistoryRepo{}
	handler := NewStreamHandler(NewSaver(root), repo)
	app := entity.NewApp("app-3", "user-1", "落地页", entity.CodeGenTypeHTML)

	var emitted int
	emit := func([]byte) error {
		emitted++
		return errors.New("client gone")
	}

	events := eventsFrom(
		newTextEvent("<html>"),
		newTextEvent("<body>hi</body></html>"),
		newCompleteEvent(),
	)
	result := handler.Consume(context.Background(), app, "user-1", events, emit)

	// 首次推送失败后不再推送，但持久化照常完成
	assert.Equal(t, 1, emitted)
	require.NoError(t, result.Err)
	assert.NotEmpty(t, result.SavedDir)
	assert.Len(t, repo.all(), 1)
}

func TestStreamHandler_SaveFailureDoesNotFailRun(t *testing.T) {
	repo := &fakeHistoryRepo{}
	handler := NewStreamHandler(NewSaver(t.TempDir()), repo)
	app := entity.NewApp("app-4", "user-1", "多文件页面", entity.CodeGenTypeMultiFile)

	// multi_file 无围栏解析结果为空，落盘校验失败但对话正常结束
	events := eventsFrom(newTextEvent("没有任何代码块"), newCompleteEvent())
	result := handler.Consume(context.Background(), app, "user-1", events, nil)

	require.NoError(t, result.Err)
	assert.Empty(t, result.SavedDir)
	assert.Len(t, repo.all(), 1)
}

func TestStreamHandler_VueProjectUsesProjectDir(t *testing.T) {
	root := t.TempDir()
	repo := &fakeHistoryRepo{}
	handler := NewStreamHandler(NewSaver(root), repo)
	app := entity.NewApp("app-5", "user-1", "工程项目", entity.CodeGenTypeVueProject)

	events := eventsFrom(
		StreamEvent{Type: EventToolRequest, Tool: &ToolCallInfo{ID: "c1", Name: ToolWriteFile}},
		StreamEvent{Type: EventToolResult, Tool: &ToolCallInfo{ID: "c1", Name: ToolWriteFile, Output: "ok"}},
		newTextEvent("已完成"),
		newCompleteEvent(),
	)
	result := handler.Consume(context.Background(), app, "user-1", events, nil)

	require.NoError(t, result.Err)
	assert.Equal(t, filepath.Join(root, "vue_project_app-5"), result.SavedDir)
}

func TestStreamHandler_EmptyOutputStillAppendsHistory(t *testing.T) {
	repo := &fakeHistoryRepo{}
	handler := NewStreamHandler(NewSaver(t.TempDir()), repo)
	app := entity.NewApp("app-6", "user-1", "落地页", entity.CodeGenTypeHTML)

	events := eventsFrom(newCompleteEvent())
	result := handler.Consume(context.Background(), app, "user-1", events, nil)

	require.NoError(t, result.Err)
	records := repo.all()
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].Message)
}
