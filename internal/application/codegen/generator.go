package codegen

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/workflow/port"
	"z-appgen-ai-api/internal/workflow/prompt"
	"z-appgen-ai-api/pkg/errors"
	"z-appgen-ai-api/pkg/logger"
	"z-appgen-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("codegen")

// Generator 驱动一次模型生成，把增量输出转换为事件流
type Generator struct {
	factory port.ChatModelFactory
	prompts *prompt.Registry
	saver   *Saver
	cfg     *config.CodegenConfig
}

// NewGenerator 创建生成器
func NewGenerator(factory port.ChatModelFactory, prompts *prompt.Registry, saver *Saver, cfg *config.Config) *Generator {
	return &Generator{
		factory: factory,
		prompts: prompts,
		saver:   saver,
		cfg:     &cfg.Codegen,
	}
}

// Stream 启动一次生成，返回事件通道。
// 用户消息会先写入会话内存；生成成功后 AI 完整回复也写入内存。
// 通道以恰好一个 Complete 或 Error 事件结束，随后关闭。
func (g *Generator) Stream(ctx context.Context, sess *Session, app *entity.App, userMessage string) <-chan StreamEvent {
	events := make(chan StreamEvent, 16)

	sess.Memory.AddUserMessage(userMessage)

	go func() {
		defer close(events)

		streamCtx := ctx
		var cancel context.CancelFunc
		if g.cfg.StreamTimeout > 0 {
			streamCtx, cancel = context.WithTimeout(ctx, g.cfg.StreamTimeout)
			defer cancel()
		}

		streamCtx, span := tracer.Start(streamCtx, "codegen.Stream",
			trace.WithAttributes(
				attribute.String("app.id", app.ID),
				attribute.String("codegen.gen_type", string(app.CodeGenType)),
			))
		defer span.End()

		start := time.Now()
		var err error
		switch app.CodeGenType {
		case entity.CodeGenTypeVueProject:
			err = g.streamWithTools(streamCtx, sess, app, events)
		default:
			err = g.streamSimple(streamCtx, sess, app, events)
		}

		if err != nil {
			span.RecordError(err)
			metrics.CodegenTotal.WithLabelValues(string(app.CodeGenType), "error").Inc()
			events <- newErrorEvent(err)
			return
		}
		metrics.CodegenTotal.WithLabelValues(string(app.CodeGenType), "success").Inc()
		metrics.CodegenDuration.WithLabelValues(string(app.CodeGenType)).Observe(time.Since(start).Seconds())
		events <- newCompleteEvent()
	}()

	return events
}

// systemPromptFor 返回生成类型对应的 system 提示词
func (g *Generator) systemPromptFor(genType entity.CodeGenType) (string, error) {
	var id prompt.PromptID
	switch genType {
	case entity.CodeGenTypeHTML:
		id = prompt.PromptCodegenHTMLV1
	case entity.CodeGenTypeMultiFile:
		id = prompt.PromptCodegenMultiFileV1
	case entity.CodeGenTypeVueProject:
		id = prompt.PromptCodegenVueProjectV1
	default:
		return "", errors.New(errors.CodeValidationFailed, "未知的生成类型").WithDetail(string(genType))
	}
	return g.prompts.System(id)
}

// buildMessages 拼接 system 提示词与会话内存窗口
func (g *Generator) buildMessages(sess *Session, genType entity.CodeGenType) ([]*schema.Message, error) {
	system, err := g.systemPromptFor(genType)
	if err != nil {
		return nil, err
	}
	msgs := make([]*schema.Message, 0, sess.Memory.Len()+1)
	msgs = append(msgs, schema.SystemMessage(system))
	msgs = append(msgs, sess.Memory.Messages()...)
	return msgs, nil
}

// streamSimple html / multi_file 的纯文本流式生成
func (g *Generator) streamSimple(ctx context.Context, sess *Session, app *entity.App, events chan<- StreamEvent) error {
	chatModel, err := g.factory.Default(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeLLMProviderError, "获取模型客户端失败")
	}
	msgs, err := g.buildMessages(sess, app.CodeGenType)
	if err != nil {
		return err
	}

	reader, err := chatModel.Stream(ctx, msgs)
	if err != nil {
		return errors.Wrap(err, errors.CodeLLMCallFailed, "模型流式调用失败")
	}
	defer reader.Close()

	full, err := g.relayStream(ctx, reader, events)
	if err != nil {
		return err
	}

	sess.Memory.AddAIMessage(full)
	return nil
}

// relayStream 把 StreamReader 的增量转发为 PartialText 事件，返回拼接后的完整文本。
// 约定：流可能在最后返回一个 Content 为空但包含 Usage 的消息，用于 Token 统计。
func (g *Generator) relayStream(ctx context.Context, reader *schema.StreamReader[*schema.Message], events chan<- StreamEvent) (string, error) {
	var chunks []*schema.Message
	for {
		msg, err := reader.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, errors.CodeStreamError, "接收模型输出失败")
		}
		chunks = append(chunks, msg)
		if msg.Content == "" {
			continue
		}
		select {
		case events <- newTextEvent(msg.Content):
		case <-ctx.Done():
			return "", errors.Wrap(ctx.Err(), errors.CodeStreamError, "生成流被取消")
		}
	}

	if len(chunks) == 0 {
		return "", errors.New(errors.CodeStreamError, "模型未返回任何输出")
	}
	full, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeStreamError, "合并流式输出失败")
	}
	return full.Content, nil
}

// streamWithTools vue_project 的工具调用循环生成。
// 每轮把会话消息连同工具定义交给模型，转发文本增量，流结束后合并消息
// 恢复工具调用；没有工具调用则本轮即最终回复。
func (g *Generator) streamWithTools(ctx context.Context, sess *Session, app *entity.App, events chan<- StreamEvent) error {
	baseModel, err := g.factory.ToolCall(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeLLMProviderError, "获取模型客户端失败")
	}
	toolModel, ok := baseModel.(model.ToolCallingChatModel)
	if !ok {
		return errors.New(errors.CodeLLMProviderError, "模型客户端不支持工具调用")
	}

	projectDir, err := g.saver.EnsureProjectDir(app)
	if err != nil {
		return err
	}
	toolset := NewFileToolset(projectDir)
	tools, err := toolset.Tools()
	if err != nil {
		return errors.Wrap(err, errors.CodeGenerationFailed, "构建文件工具失败")
	}

	toolInfos := make([]*schema.ToolInfo, 0, len(tools))
	toolByName := make(map[string]tool.InvokableTool, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CodeGenerationFailed, "获取工具定义失败")
		}
		toolInfos = append(toolInfos, info)
		toolByName[info.Name] = t
	}

	boundModel, err := toolModel.WithTools(toolInfos)
	if err != nil {
		return errors.Wrap(err, errors.CodeGenerationFailed, "绑定工具失败")
	}

	msgs, err := g.buildMessages(sess, app.CodeGenType)
	if err != nil {
		return err
	}

	maxRounds := g.cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = 20
	}

	var finalText string
	for round := 0; round < maxRounds; round++ {
		reader, err := boundModel.Stream(ctx, msgs)
		if err != nil {
			return errors.Wrap(err, errors.CodeLLMCallFailed, "模型流式调用失败")
		}

		assistant, err := g.relayToolRound(ctx, reader, events)
		reader.Close()
		if err != nil {
			return err
		}

		if len(assistant.ToolCalls) == 0 {
			finalText = assistant.Content
			break
		}

		msgs = append(msgs, assistant)
		for _, call := range assistant.ToolCalls {
			output := g.executeToolCall(ctx, toolByName, call, events)
			msgs = append(msgs, schema.ToolMessage(output, call.ID, schema.WithToolName(call.Function.Name)))
		}
	}

	if finalText == "" {
		finalText = fmt.Sprintf("已在 %s 类型项目中完成本轮文件构建", app.CodeGenType)
	}
	sess.Memory.AddAIMessage(finalText)
	return nil
}

// relayToolRound 转发一轮流式输出并合并出完整 assistant 消息（含工具调用）
func (g *Generator) relayToolRound(ctx context.Context, reader *schema.StreamReader[*schema.Message], events chan<- StreamEvent) (*schema.Message, error) {
	var chunks []*schema.Message
	for {
		msg, err := reader.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStreamError, "接收模型输出失败")
		}
		chunks = append(chunks, msg)
		if msg.Content == "" {
			continue
		}
		select {
		case events <- newTextEvent(msg.Content):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), errors.CodeStreamError, "生成流被取消")
		}
	}
	if len(chunks) == 0 {
		return nil, errors.New(errors.CodeStreamError, "模型未返回任何输出")
	}
	assistant, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStreamError, "合并流式输出失败")
	}
	return assistant, nil
}

// executeToolCall 执行单个工具调用并发出事件。
// 未知工具名不中断生成，用纠正性的工具结果引导模型重试。
func (g *Generator) executeToolCall(ctx context.Context, toolByName map[string]tool.InvokableTool, call schema.ToolCall, events chan<- StreamEvent) string {
	events <- StreamEvent{
		Type: EventToolRequest,
		Tool: &ToolCallInfo{ID: call.ID, Name: call.Function.Name, Args: call.Function.Arguments},
	}

	entry, ok := toolByName[call.Function.Name]
	var output string
	if !ok {
		output = fmt.Sprintf("错误：工具 %s 不存在，可用工具：%s、%s、%s、%s、%s",
			call.Function.Name, ToolWriteFile, ToolReadFile, ToolReadDir, ToolModifyFile, ToolDeleteFile)
		logger.Warn(ctx, "模型请求了未知工具", "tool", call.Function.Name)
	} else {
		result, err := entry.InvokableRun(ctx, call.Function.Arguments)
		if err != nil {
			output = fmt.Sprintf("错误：%v", err)
			logger.Warn(ctx, "工具执行失败", "tool", call.Function.Name, "error", err)
		} else {
			output = result
		}
	}

	events <- StreamEvent{
		Type: EventToolResult,
		Tool: &ToolCallInfo{ID: call.ID, Name: call.Function.Name, Output: output},
	}
	return output
}
