// Package chain 组装代码生成工作流
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cloudwego/eino/compose"

	"z-appgen-ai-api/internal/application/assets"
	"z-appgen-ai-api/internal/application/codegen"
	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	"z-appgen-ai-api/internal/domain/service"
	wfmodel "z-appgen-ai-api/internal/workflow/model"
	wfnode "z-appgen-ai-api/internal/workflow/node"
	"z-appgen-ai-api/internal/workflow/port"
	workflowprompt "z-appgen-ai-api/internal/workflow/prompt"
	"z-appgen-ai-api/pkg/logger"
)

// qualityCodeMaxRunes 提交给质量检查模型的代码文本上限
const qualityCodeMaxRunes = 60000

// CodegenWorkflow 代码生成工作流：route -> generate -> (collect_assets) -> quality_check。
// 每个节点失败时降级为安全默认值（路由失败用 html、素材失败为空、
// 质量检查失败视为通过），图本身总能执行到 END。
type CodegenWorkflow struct {
	facade  *codegen.Facade
	assets  *assets.Engine
	factory port.ChatModelFactory
	prompts *workflowprompt.Registry
	cfg     *config.CodegenConfig

	graphOnce sync.Once
	graph     compose.Runnable[*wfmodel.Context, *wfmodel.Context]
	graphErr  error
}

// NewCodegenWorkflow 创建代码生成工作流
func NewCodegenWorkflow(
	facade *codegen.Facade,
	assetsEngine *assets.Engine,
	factory port.ChatModelFactory,
	prompts *workflowprompt.Registry,
	cfg *config.Config,
) *CodegenWorkflow {
	return &CodegenWorkflow{
		facade:  facade,
		assets:  assetsEngine,
		factory: factory,
		prompts: prompts,
		cfg:     &cfg.Codegen,
	}
}

// Execute 执行工作流
func (w *CodegenWorkflow) Execute(ctx context.Context, in *wfmodel.Context) (*wfmodel.Context, error) {
	if in == nil || in.App == nil {
		return nil, fmt.Errorf("workflow context is nil")
	}
	graph, err := w.getGraph()
	if err != nil {
		return nil, err
	}
	return graph.Invoke(ctx, in)
}

// RouteGenType 只执行路由判定，创建应用时未指定类型时使用。
// 任何失败都回退到 html。
func (w *CodegenWorkflow) RouteGenType(ctx context.Context, userPrompt string) (entity.CodeGenType, string) {
	return w.route(ctx, userPrompt)
}

func (w *CodegenWorkflow) getGraph() (compose.Runnable[*wfmodel.Context, *wfmodel.Context], error) {
	w.graphOnce.Do(func() {
		w.graph, w.graphErr = w.buildGraph(context.Background())
	})
	return w.graph, w.graphErr
}

// buildGraph 构建 Eino 处理图：
//
//	START -> route -> generate
//	                    ↓
//	                 <分支判断>
//	                /         \
//	      (vue_project)     (其它类型)
//	           ↓                ↓
//	     collect_assets    quality_check -> END
//	           ↓
//	     quality_check
func (w *CodegenWorkflow) buildGraph(ctx context.Context) (compose.Runnable[*wfmodel.Context, *wfmodel.Context], error) {
	graph := compose.NewGraph[*wfmodel.Context, *wfmodel.Context]()

	// 1. route: 生成类型未指定时由模型判定，失败降级为 html
	if err := graph.AddLambdaNode("route", compose.InvokableLambda(func(ctx context.Context, st *wfmodel.Context) (*wfmodel.Context, error) {
		if st == nil || st.App == nil {
			return nil, fmt.Errorf("workflow context is nil")
		}
		if st.App.CodeGenType.Valid() {
			return st, nil
		}
		genType, reason := w.route(ctx, st.Prompt)
		st.App.CodeGenType = genType
		st.RouteReason = reason
		return st, nil
	}), compose.WithNodeName("codegen.route")); err != nil {
		return nil, err
	}

	// 2. generate: 阻塞式生成，失败记录在状态中而不中断图
	if err := graph.AddLambdaNode("generate", compose.InvokableLambda(func(ctx context.Context, st *wfmodel.Context) (*wfmodel.Context, error) {
		if st == nil || st.App == nil {
			return nil, fmt.Errorf("workflow context is nil")
		}
		ctx = service.WithWorkflow(ctx, "codegen_generate")
		result, err := w.facade.GenerateBlocking(ctx, st.App, st.UserID, st.Prompt)
		if err != nil {
			st.GenerateError = err.Error()
			logger.Error(ctx, "工作流生成节点失败", err, "app_id", st.App.ID)
			return st, nil
		}
		if result.Err != nil {
			st.GenerateError = result.Err.Error()
			logger.Error(ctx, "工作流生成节点失败", result.Err, "app_id", st.App.ID)
			return st, nil
		}
		st.GeneratedDir = result.SavedDir
		return st, nil
	}), compose.WithNodeName("codegen.generate")); err != nil {
		return nil, err
	}

	// 3. collect_assets: 仅 vue_project 分支，素材缺失不阻断
	if err := graph.AddLambdaNode("collect_assets", compose.InvokableLambda(func(ctx context.Context, st *wfmodel.Context) (*wfmodel.Context, error) {
		if st == nil || st.App == nil {
			return nil, fmt.Errorf("workflow context is nil")
		}
		ctx = service.WithWorkflow(ctx, "codegen_collect_assets")
		st.Images = w.assets.CollectImages(ctx, st.Prompt)
		w.writeAssetManifest(ctx, st)
		return st, nil
	}), compose.WithNodeName("codegen.collect_assets")); err != nil {
		return nil, err
	}

	// 4. quality_check: 任何失败都视为通过
	if err := graph.AddLambdaNode("quality_check", compose.InvokableLambda(func(ctx context.Context, st *wfmodel.Context) (*wfmodel.Context, error) {
		if st == nil || st.App == nil {
			return nil, fmt.Errorf("workflow context is nil")
		}
		ctx = service.WithWorkflow(ctx, "codegen_quality_check")
		st.Quality = w.qualityCheck(ctx, st)
		return st, nil
	}), compose.WithNodeName("codegen.quality_check")); err != nil {
		return nil, err
	}

	if err := graph.AddEdge(compose.START, "route"); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("route", "generate"); err != nil {
		return nil, err
	}

	branch := func(ctx context.Context, st *wfmodel.Context) (string, error) {
		if st != nil && st.App != nil && st.App.CodeGenType.UsesTools() {
			return "collect_assets", nil
		}
		return "quality_check", nil
	}
	if err := graph.AddBranch("generate", compose.NewGraphBranch(branch, map[string]bool{"collect_assets": true, "quality_check": true})); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("collect_assets", "quality_check"); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("quality_check", compose.END); err != nil {
		return nil, err
	}

	return graph.Compile(ctx, compose.WithGraphName("codegen_workflow"))
}

// route 调用模型判定生成类型，失败回退 html
func (w *CodegenWorkflow) route(ctx context.Context, userPrompt string) (entity.CodeGenType, string) {
	ctx = service.WithWorkflow(ctx, "codegen_route")

	tpl, err := w.prompts.ChatTemplate(workflowprompt.PromptRouteV1)
	if err != nil {
		logger.Warn(ctx, "加载路由提示词失败，回退 html", "error", err)
		return entity.CodeGenTypeHTML, ""
	}
	msgs, err := tpl.Format(ctx, map[string]any{"prompt": userPrompt})
	if err != nil {
		logger.Warn(ctx, "渲染路由提示词失败，回退 html", "error", err)
		return entity.CodeGenTypeHTML, ""
	}

	chatModel, err := w.factory.Routing(ctx)
	if err != nil {
		logger.Warn(ctx, "获取路由模型失败，回退 html", "error", err)
		return entity.CodeGenTypeHTML, ""
	}
	outMsg, err := chatModel.Generate(ctx, msgs)
	if err != nil || outMsg == nil {
		logger.Warn(ctx, "路由调用失败，回退 html", "error", err)
		return entity.CodeGenTypeHTML, ""
	}

	var decision struct {
		CodeGenType string `json:"code_gen_type"`
		Reason      string `json:"reason"`
	}
	raw := wfnode.ExtractJSONObject(outMsg.Content)
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		logger.Warn(ctx, "路由结果解析失败，回退 html", "error", err)
		return entity.CodeGenTypeHTML, ""
	}
	genType, err := entity.ParseCodeGenType(decision.CodeGenType)
	if err != nil {
		logger.Warn(ctx, "路由返回未知类型，回退 html", "value", decision.CodeGenType)
		return entity.CodeGenTypeHTML, decision.Reason
	}
	return genType, decision.Reason
}

// writeAssetManifest 把素材清单写入生成目录，失败只记日志
func (w *CodegenWorkflow) writeAssetManifest(ctx context.Context, st *wfmodel.Context) {
	if st.GeneratedDir == "" || len(st.Images) == 0 {
		return
	}
	manifest, err := json.MarshalIndent(st.Images, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(st.GeneratedDir, "assets.json"), manifest, 0o644); err != nil {
		logger.Warn(ctx, "写入素材清单失败", "app_id", st.App.ID, "error", err)
		return
	}
	block := wfnode.BuildImagesBlock(st.Images)
	if block == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(st.GeneratedDir, "ASSETS.md"), []byte(block+"\n"), 0o644); err != nil {
		logger.Warn(ctx, "写入素材说明失败", "app_id", st.App.ID, "error", err)
	}
}

// qualityCheck 对生成产物做一次模型审查，任何环节失败都视为通过
func (w *CodegenWorkflow) qualityCheck(ctx context.Context, st *wfmodel.Context) *wfmodel.QualityResult {
	pass := &wfmodel.QualityResult{Checked: false, Passed: true}
	if !w.cfg.QualityCheck.Enabled || st.GeneratedDir == "" || st.GenerateError != "" {
		return pass
	}

	code, err := wfnode.CollectSourceText(st.GeneratedDir, w.cfg.QualityCheck.MaxFileSize, w.cfg.QualityCheck.MaxTotal)
	if err != nil || code == "" {
		if err != nil {
			logger.Warn(ctx, "收集质量检查源码失败，视为通过", "app_id", st.App.ID, "error", err)
		}
		return pass
	}
	code = wfnode.TruncateByRunes(code, qualityCodeMaxRunes)

	tpl, err := w.prompts.ChatTemplate(workflowprompt.PromptQualityCheckV1)
	if err != nil {
		return pass
	}
	msgs, err := tpl.Format(ctx, map[string]any{
		"code_gen_type": string(st.App.CodeGenType),
		"code":          code,
	})
	if err != nil {
		return pass
	}

	chatModel, err := w.factory.Routing(ctx)
	if err != nil {
		return pass
	}
	outMsg, err := chatModel.Generate(ctx, msgs)
	if err != nil || outMsg == nil {
		logger.Warn(ctx, "质量检查调用失败，视为通过", "app_id", st.App.ID, "error", err)
		return pass
	}

	var result wfmodel.QualityResult
	raw := wfnode.ExtractJSONObject(outMsg.Content)
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logger.Warn(ctx, "质量检查结果解析失败，视为通过", "app_id", st.App.ID, "error", err)
		return pass
	}
	result.Checked = true
	return &result
}
