package codegen

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/workflow/prompt"
)

func testFacadeConfig() *config.Config {
	return &config.Config{
		Codegen: config.CodegenConfig{
			StreamTimeout:    time.Minute,
			MemoryWindow:     50,
			HistoryLoadLimit: 20,
			MaxToolRounds:    3,
		},
	}
}

func newTestFacade(t *testing.T, chatModel *fakeChatModel, repo *fakeHistoryRepo) *Facade {
	t.Helper()
	cfg := testFacadeConfig()
	saver := NewSaver(t.TempDir())
	gen := NewGenerator(&fakeModelFactory{chatModel: chatModel}, prompt.NewRegistry(), saver, cfg)
	return NewFacade(NewSessionCache(cfg), gen, NewStreamHandler(saver, repo), repo, cfg)
}

func seedHistory(t *testing.T, repo *fakeHistoryRepo, appID, userID string, turns ...[2]string) {
	t.Helper()
	for _, turn := range turns {
		require.NoError(t, repo.Append(context.Background(), &entity.ChatHistory{
			AppID:       appID,
			UserID:      userID,
			Message:     turn[1],
			MessageType: entity.MessageType(turn[0]),
		}))
	}
}

// 聊天入口在调用生成前已把本轮用户消息落库，会话预热时必须跳过这一条，
// 否则它会同时出现在预载历史和生成器写入的消息里。
func TestFacade_GenerateStreamPromptContainsUserMessageOnce(t *testing.T) {
	repo := &fakeHistoryRepo{}
	app := entity.NewApp("app-f1", "user-1", "落地页", entity.CodeGenTypeHTML)
	current := "再加一个返回顶部按钮"
	seedHistory(t, repo, app.ID, "user-1",
		[2]string{string(entity.MessageTypeUser), "做一个落地页"},
		[2]string{string(entity.MessageTypeAI), "```html\n<html></html>\n```"},
		[2]string{string(entity.MessageTypeUser), current},
	)

	chatModel := &fakeChatModel{chunks: []string{"```html\n<html><a href=\"#top\"></a></html>\n```"}}
	facade := newTestFacade(t, chatModel, repo)

	result, err := facade.GenerateStream(context.Background(), app, "user-1", current, nil)
	require.NoError(t, err)
	require.NoError(t, result.Err)

	inputs := chatModel.receivedInputs()
	require.Len(t, inputs, 1)
	msgs := inputs[0]

	// 本轮用户消息在提示词里恰好出现一次
	occurrences := 0
	for _, m := range msgs {
		if m.Role == schema.User && m.Content == current {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)

	// system + 两条历史 + 本轮用户消息，按时间先后排列
	require.Len(t, msgs, 4)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "做一个落地页", msgs[1].Content)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, current, msgs[3].Content)
}

// 历史只有本轮这一条用户消息时，预热后的内存为空，提示词里仍只有一次
func TestFacade_GenerateStreamFirstTurnPromptHasSingleUserMessage(t *testing.T) {
	repo := &fakeHistoryRepo{}
	app := entity.NewApp("app-f2", "user-1", "落地页", entity.CodeGenTypeHTML)
	current := "做一个落地页"
	seedHistory(t, repo, app.ID, "user-1", [2]string{string(entity.MessageTypeUser), current})

	chatModel := &fakeChatModel{chunks: []string{"```html\n<html></html>\n```"}}
	facade := newTestFacade(t, chatModel, repo)

	result, err := facade.GenerateStream(context.Background(), app, "user-1", current, nil)
	require.NoError(t, err)
	require.NoError(t, result.Err)

	inputs := chatModel.receivedInputs()
	require.Len(t, inputs, 1)
	msgs := inputs[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, current, msgs[1].Content)
}

func TestFacade_InvalidateSessionForcesRebuild(t *testing.T) {
	repo := &fakeHistoryRepo{}
	app := entity.NewApp("app-f3", "user-1", "落地页", entity.CodeGenTypeHTML)
	seedHistory(t, repo, app.ID, "user-1", [2]string{string(entity.MessageTypeUser), "做一个落地页"})

	facade := newTestFacade(t, &fakeChatModel{chunks: []string{"ok"}}, repo)

	first, err := facade.Session(context.Background(), app)
	require.NoError(t, err)
	again, err := facade.Session(context.Background(), app)
	require.NoError(t, err)
	assert.Same(t, first, again)

	facade.InvalidateSession(app)
	rebuilt, err := facade.Session(context.Background(), app)
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
}
