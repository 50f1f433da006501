package codegen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/workflow/prompt"
)

// fakeChatModel 按预置分片回放流式输出，并记录每次调用收到的消息
type fakeChatModel struct {
	chunks    []string
	streamErr error

	mu     sync.Mutex
	inputs [][]*schema.Message
}

func (m *fakeChatModel) recordInput(in []*schema.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, in)
}

func (m *fakeChatModel) receivedInputs() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]*schema.Message, len(m.inputs))
	copy(out, m.inputs)
	return out
}

func (m *fakeChatModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.recordInput(in)
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	var full string
	for _, c := range m.chunks {
		full += c
	}
	return schema.AssistantMessage(full, nil), nil
}

func (m *fakeChatModel) Stream(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.recordInput(in)
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	msgs := make([]*schema.Message, 0, len(m.chunks))
	for _, c := range m.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

// fakeToolModel 按轮次回放流式输出，支持工具绑定
type fakeToolModel struct {
	rounds [][]*schema.Message

	mu    sync.Mutex
	calls int
}

func (m *fakeToolModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return nil, errors.New("not used")
}

func (m *fakeToolModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	round := m.rounds[m.calls%len(m.rounds)]
	m.calls++
	return schema.StreamReaderFromArray(round), nil
}

func (m *fakeToolModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func (m *fakeToolModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeModelFactory 所有用途返回同一个假模型
type fakeModelFactory struct {
	chatModel model.BaseChatModel
	err       error
}

func (f *fakeModelFactory) Get(_ context.Context, _ string) (model.BaseChatModel, error) {
	return f.chatModel, f.err
}

func (f *fakeModelFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

func (f *fakeModelFactory) Routing(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

func (f *fakeModelFactory) ToolCall(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

func testGeneratorConfig() *config.Config {
	return &config.Config{
		Codegen: config.CodegenConfig{
			StreamTimeout: time.Minute,
			MaxToolRounds: 3,
		},
	}
}

func newTestSession(app *entity.App) *Session {
	return &Session{
		AppID:   app.ID,
		GenType: app.CodeGenType,
		Memory:  NewConversationMemory(50),
	}
}

func collectEvents(t *testing.T, events <-chan StreamEvent) []StreamEvent {
	t.Helper()
	var out []StreamEvent
	deadline := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, e)
		case <-deadline:
			t.Fatal("event channel did not close in time")
		}
	}
}

func TestGenerator_StreamSimpleRelaysAndCompletes(t *testing.T) {
	factory := &fakeModelFactory{chatModel: &fakeChatModel{
		chunks: []string{"```html\n<html>", "<body>hi</body>", "</html>\n```"},
	}}
	gen := NewGenerator(factory, prompt.NewRegistry(), NewSaver(t.TempDir()), testGeneratorConfig())
	app := entity.NewApp("app-1", "user-1", "落地页", entity.CodeGenTypeHTML)
	sess := newTestSession(app)

	events := collectEvents(t, gen.Stream(context.Background(), sess, app, "做一个落地页"))

	require.NotEmpty(t, events)
	// 恰好一个终止事件，且在最后
	assert.Equal(t, EventComplete, events[len(events)-1].Type)
	var full string
	for _, e := range events[:len(events)-1] {
		require.Equal(t, EventPartialText, e.Type)
		full += e.Text
	}
	assert.Equal(t, "```html\n<html><body>hi</body></html>\n```", full)

	// 用户消息和完整 AI 回复都进入会话内存
	msgs := sess.Memory.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Equal(t, "做一个落地页", msgs[0].Content)
	assert.Equal(t, schema.Assistant, msgs[1].Role)
	assert.Equal(t, full, msgs[1].Content)
}

func TestGenerator_StreamModelFailureEmitsError(t *testing.T) {
	factory := &fakeModelFactory{chatModel: &fakeChatModel{streamErr: errors.New("provider down")}}
	gen := NewGenerator(factory, prompt.NewRegistry(), NewSaver(t.TempDir()), testGeneratorConfig())
	app := entity.NewApp("app-2", "user-1", "落地页", entity.CodeGenTypeHTML)
	sess := newTestSession(app)

	events := collectEvents(t, gen.Stream(context.Background(), sess, app, "做一个落地页"))

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Type)
	require.Error(t, last.Err)
	assert.Contains(t, last.Err.Error(), "provider down")
}

func TestGenerator_StreamFactoryFailureEmitsError(t *testing.T) {
	factory := &fakeModelFactory{err: errors.New("no such provider")}
	gen := NewGenerator(factory, prompt.NewRegistry(), NewSaver(t.TempDir()), testGeneratorConfig())
	app := entity.NewApp("app-3", "user-1", "落地页", entity.CodeGenTypeMultiFile)
	sess := newTestSession(app)

	events := collectEvents(t, gen.Stream(context.Background(), sess, app, "做一个页面"))

	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
}

func TestGenerator_StreamWithToolsExecutesAndRecovers(t *testing.T) {
	toolModel := &fakeToolModel{rounds: [][]*schema.Message{
		// 第一轮：一个合法写文件调用 + 一个未知工具调用
		{schema.AssistantMessage("", []schema.ToolCall{
			{ID: "c1", Function: schema.FunctionCall{
				Name:      ToolWriteFile,
				Arguments: `{"path":"index.html","content":"<html></html>"}`,
			}},
			{ID: "c2", Function: schema.FunctionCall{
				Name:      "launch_rocket",
				Arguments: `{}`,
			}},
		})},
		// 第二轮：纯文本收尾
		{schema.AssistantMessage("项目文件已就绪", nil)},
	}}
	factory := &fakeModelFactory{chatModel: toolModel}
	root := t.TempDir()
	gen := NewGenerator(factory, prompt.NewRegistry(), NewSaver(root), testGeneratorConfig())
	app := entity.NewApp("app-5", "user-1", "工程项目", entity.CodeGenTypeVueProject)
	sess := newTestSession(app)

	events := collectEvents(t, gen.Stream(context.Background(), sess, app, "做一个管理后台"))

	require.Len(t, events, 6)
	assert.Equal(t, EventToolRequest, events[0].Type)
	assert.Equal(t, "c1", events[0].Tool.ID)
	assert.Equal(t, ToolWriteFile, events[0].Tool.Name)
	assert.Equal(t, EventToolResult, events[1].Type)
	assert.Equal(t, "c1", events[1].Tool.ID)
	assert.NotContains(t, events[1].Tool.Output, "错误")

	// 未知工具名用纠正性结果回给模型，而不是中断生成
	assert.Equal(t, EventToolRequest, events[2].Type)
	assert.Equal(t, "launch_rocket", events[2].Tool.Name)
	assert.Equal(t, EventToolResult, events[3].Type)
	assert.Contains(t, events[3].Tool.Output, "不存在")
	assert.Contains(t, events[3].Tool.Output, ToolWriteFile)

	assert.Equal(t, EventPartialText, events[4].Type)
	assert.Equal(t, "项目文件已就绪", events[4].Text)
	assert.Equal(t, EventComplete, events[5].Type)

	// 工具确实落盘到项目目录
	b, err := os.ReadFile(filepath.Join(root, "vue_project_app-5", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(b))

	// 最终文本写入会话内存
	msgs := sess.Memory.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, schema.Assistant, msgs[len(msgs)-1].Role)
	assert.Equal(t, "项目文件已就绪", msgs[len(msgs)-1].Content)
	assert.Equal(t, 2, toolModel.callCount())
}

func TestGenerator_StreamWithToolsStopsAtRoundCap(t *testing.T) {
	// 模型每轮都请求工具调用，永不收尾
	toolModel := &fakeToolModel{rounds: [][]*schema.Message{
		{schema.AssistantMessage("", []schema.ToolCall{
			{ID: "c1", Function: schema.FunctionCall{
				Name:      ToolWriteFile,
				Arguments: `{"path":"loop.txt","content":"again"}`,
			}},
		})},
	}}
	factory := &fakeModelFactory{chatModel: toolModel}
	gen := NewGenerator(factory, prompt.NewRegistry(), NewSaver(t.TempDir()), testGeneratorConfig())
	app := entity.NewApp("app-6", "user-1", "工程项目", entity.CodeGenTypeVueProject)
	sess := newTestSession(app)

	events := collectEvents(t, gen.Stream(context.Background(), sess, app, "做一个管理后台"))

	require.NotEmpty(t, events)
	assert.Equal(t, EventComplete, events[len(events)-1].Type)
	assert.Equal(t, 3, toolModel.callCount())

	// 轮数耗尽时用兜底文本收尾
	msgs := sess.Memory.Messages()
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[len(msgs)-1].Content, "完成本轮文件构建")
}

func TestGenerator_StreamEmptyOutputIsError(t *testing.T) {
	factory := &fakeModelFactory{chatModel: &fakeChatModel{}}
	gen := NewGenerator(factory, prompt.NewRegistry(), NewSaver(t.TempDir()), testGeneratorConfig())
	app := entity.NewApp("app-4", "user-1", "落地页", entity.CodeGenTypeHTML)
	sess := newTestSession(app)

	events := collectEvents(t, gen.Stream(context.Background(), sess, app, "做一个页面"))

	require.NotEmpty(t, events)
	assert.Equal(t, EventError, events[len(events)-1].Type)
}
