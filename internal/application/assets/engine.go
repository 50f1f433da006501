// Package assets 实现素材收集引擎：规划 + 并发采集
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
	wfnode "z-appgen-ai-api/internal/workflow/node"
	"z-appgen-ai-api/internal/workflow/port"
	workflowprompt "z-appgen-ai-api/internal/workflow/prompt"
	"z-appgen-ai-api/pkg/logger"
	"z-appgen-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("assets")

// ImageQuery 图片搜索子任务
type ImageQuery struct {
	Query string `json:"query"`
}

// DiagramSpec 架构图子任务
type DiagramSpec struct {
	Mermaid     string `json:"mermaid"`
	Description string `json:"description"`
}

// LogoSpec Logo 生成子任务
type LogoSpec struct {
	Description string `json:"description"`
}

// ImageCollectionPlan 一次素材收集的规划结果，四类子任务列表
type ImageCollectionPlan struct {
	ContentImages []ImageQuery  `json:"content_images"`
	Illustrations []ImageQuery  `json:"illustrations"`
	Diagrams      []DiagramSpec `json:"diagrams"`
	Logos         []LogoSpec    `json:"logos"`
}

// TaskCount 子任务总数
func (p *ImageCollectionPlan) TaskCount() int {
	if p == nil {
		return 0
	}
	return len(p.ContentImages) + len(p.Illustrations) + len(p.Diagrams) + len(p.Logos)
}

// ImageSearcher 图片搜索后端（内容图 / 插画）
type ImageSearcher interface {
	SearchPhotos(ctx context.Context, query string) ([]entity.ImageResource, error)
	SearchIllustrations(ctx context.Context, query string) ([]entity.ImageResource, error)
}

// DiagramRenderer 架构图渲染后端
type DiagramRenderer interface {
	Render(ctx context.Context, mermaidCode, description string) (*entity.ImageResource, error)
}

// LogoGenerator Logo 生成后端
type LogoGenerator interface {
	GenerateLogo(ctx context.Context, description string) (*entity.ImageResource, error)
}

// Engine 素材收集引擎：一次模型规划调用产出子任务列表，
// 子任务并发执行，单个失败只记日志，保留其余结果。
type Engine struct {
	factory  port.ChatModelFactory
	prompts  *workflowprompt.Registry
	searcher ImageSearcher
	diagram  DiagramRenderer
	logo     LogoGenerator
	cfg      *config.AssetsConfig
}

// NewEngine 创建素材收集引擎
func NewEngine(
	factory port.ChatModelFactory,
	prompts *workflowprompt.Registry,
	searcher ImageSearcher,
	diagramRenderer DiagramRenderer,
	logoGenerator LogoGenerator,
	cfg *config.Config,
) *Engine {
	return &Engine{
		factory:  factory,
		prompts:  prompts,
		searcher: searcher,
		diagram:  diagramRenderer,
		logo:     logoGenerator,
		cfg:      &cfg.Assets,
	}
}

// CollectImages 为应用描述收集素材。规划失败返回空列表而非错误，
// 素材缺失不应阻断代码生成。返回结果无序。
func (e *Engine) CollectImages(ctx context.Context, userPrompt string) []entity.ImageResource {
	ctx, span := tracer.Start(ctx, "assets.CollectImages")
	defer span.End()

	plan, err := e.plan(ctx, userPrompt)
	if err != nil {
		logger.Warn(ctx, "素材规划失败，跳过素材收集", "error", err)
		return []entity.ImageResource{}
	}
	span.SetAttributes(attribute.Int("assets.task_count", plan.TaskCount()))
	if plan.TaskCount() == 0 {
		return []entity.ImageResource{}
	}

	var (
		mu      sync.Mutex
		results []entity.ImageResource
	)
	collect := func(items []entity.ImageResource) {
		mu.Lock()
		results = append(results, items...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.cfg.Concurrency > 0 {
		g.SetLimit(e.cfg.Concurrency)
	}

	for _, q := range plan.ContentImages {
		q := q
		g.Go(func() error {
			e.runTask(gctx, entity.ImageCategoryContent, func(taskCtx context.Context) ([]entity.ImageResource, error) {
				return e.searcher.SearchPhotos(taskCtx, q.Query)
			}, collect)
			return nil
		})
	}
	for _, q := range plan.Illustrations {
		q := q
		g.Go(func() error {
			e.runTask(gctx, entity.ImageCategoryIllustration, func(taskCtx context.Context) ([]entity.ImageResource, error) {
				return e.searcher.SearchIllustrations(taskCtx, q.Query)
			}, collect)
			return nil
		})
	}
	for _, d := range plan.Diagrams {
		d := d
		g.Go(func() error {
			e.runTask(gctx, entity.ImageCategoryDiagram, func(taskCtx context.Context) ([]entity.ImageResource, error) {
				res, err := e.diagram.Render(taskCtx, d.Mermaid, d.Description)
				if err != nil {
					return nil, err
				}
				return []entity.ImageResource{*res}, nil
			}, collect)
			return nil
		})
	}
	for _, l := range plan.Logos {
		l := l
		g.Go(func() error {
			e.runTask(gctx, entity.ImageCategoryLogo, func(taskCtx context.Context) ([]entity.ImageResource, error) {
				res, err := e.logo.GenerateLogo(taskCtx, l.Description)
				if err != nil {
					return nil, err
				}
				return []entity.ImageResource{*res}, nil
			}, collect)
			return nil
		})
	}

	// 子任务不返回错误，Wait 仅用于汇合
	_ = g.Wait()

	logger.Info(ctx, "素材收集完成",
		"task_count", plan.TaskCount(), "result_count", len(results))
	return results
}

// runTask 执行单个子任务：独立超时，失败只记日志
func (e *Engine) runTask(
	ctx context.Context,
	category entity.ImageCategory,
	task func(ctx context.Context) ([]entity.ImageResource, error),
	collect func([]entity.ImageResource),
) {
	timeout := e.cfg.TaskTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	items, err := task(taskCtx)
	metrics.SubtaskDuration.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SubtaskTotal.WithLabelValues(string(category), "error").Inc()
		logger.Warn(ctx, "素材子任务失败", "category", string(category), "error", err)
		return
	}
	metrics.SubtaskTotal.WithLabelValues(string(category), "success").Inc()
	collect(items)
}

// plan 调用模型规划子任务。优先 json_schema 结构化输出，
// 模型不支持时降级为纯 Prompt 约束重试。
func (e *Engine) plan(ctx context.Context, userPrompt string) (*ImageCollectionPlan, error) {
	tpl, err := e.prompts.ChatTemplate(workflowprompt.PromptImagePlanV1)
	if err != nil {
		return nil, err
	}
	msgs, err := tpl.Format(ctx, map[string]any{"prompt": userPrompt})
	if err != nil {
		return nil, err
	}

	chatModel, err := e.factory.Routing(ctx)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, planModelOptions(true)...)
	if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only", "error", err)
		outMsg, err = chatModel.Generate(ctx, msgs, planModelOptions(false)...)
	}
	if err != nil {
		return nil, err
	}
	if outMsg == nil || outMsg.Content == "" {
		return nil, fmt.Errorf("empty llm response")
	}

	var plan ImageCollectionPlan
	raw := wfnode.ExtractJSONObject(outMsg.Content)
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse image collection plan: %w", err)
	}
	return &plan, nil
}

// planModelOptions 构建规划调用选项，enableSchema 控制是否强制 JSON Schema
func planModelOptions(enableSchema bool) []model.Option {
	if !enableSchema {
		return nil
	}
	return []model.Option{
		openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "image_collection_plan",
					"strict": false,
					"schema": imagePlanJSONSchema(),
				},
			},
		}),
	}
}

// imagePlanJSONSchema 期望模型返回的规划 JSON 结构
func imagePlanJSONSchema() map[string]any {
	queryList := map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"query"},
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
			},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"content_images", "illustrations", "diagrams", "logos"},
		"properties": map[string]any{
			"content_images": queryList,
			"illustrations":  queryList,
			"diagrams": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"mermaid", "description"},
					"properties": map[string]any{
						"mermaid":     map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
					},
				},
			},
			"logos": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"description"},
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}
