// Package port 定义工作流层对外部能力的依赖接口
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 定义生成侧对 LLM ChatModel 的最小依赖（port）。
// 具体实现由基础设施层提供，按用途区分客户端。
type ChatModelFactory interface {
	// Get 按提供商名称获取 ChatModel，名称为空时返回默认客户端
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
	// Default 返回默认 ChatModel
	Default(ctx context.Context) (model.BaseChatModel, error)
	// Routing 返回路由与结构化输出调用使用的 ChatModel
	Routing(ctx context.Context) (model.BaseChatModel, error)
	// ToolCall 返回工具调用生成使用的 ChatModel
	ToolCall(ctx context.Context) (model.BaseChatModel, error)
}
