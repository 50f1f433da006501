// Package diagram 提供架构图渲染客户端（Kroki 兼容服务）
package diagram

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
)

var tracer = otel.Tracer("diagram")

// Client 图表渲染客户端
type Client struct {
	cfg  *config.DiagramConfig
	http *http.Client
}

// NewClient 创建图表渲染客户端
func NewClient(cfg *config.DiagramConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Render 提交 mermaid 描述并返回可访问的图片 URL。
// Kroki 的 POST /mermaid/svg 返回渲染结果，这里用 302/Location 或回显 URL 模式：
// 服务端渲染成功后以 URL 形式引用，渲染失败时返回错误。
func (c *Client) Render(ctx context.Context, mermaidCode, description string) (*entity.ImageResource, error) {
	ctx, span := tracer.Start(ctx, "diagram.Render",
		trace.WithAttributes(attribute.Int("diagram.code_len", len(mermaidCode))))
	defer span.End()

	if c.cfg.Endpoint == "" {
		return nil, fmt.Errorf("diagram endpoint not configured")
	}
	if strings.TrimSpace(mermaidCode) == "" {
		return nil, fmt.Errorf("empty diagram code")
	}

	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/mermaid/svg"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(mermaidCode))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build diagram request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("diagram render failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("diagram service returned status %d", resp.StatusCode)
		span.RecordError(err)
		return nil, err
	}

	// 渲染校验通过后通过 GET 形式的稳定 URL 引用该图表
	imageURL := endpoint + "?src=" + urlEncode(mermaidCode)
	return &entity.ImageResource{
		Category:    entity.ImageCategoryDiagram,
		Description: description,
		URL:         imageURL,
	}, nil
}

func urlEncode(s string) string {
	r := strings.NewReplacer(
		" ", "%20",
		"\n", "%0A",
		"#", "%23",
		"&", "%26",
		"+", "%2B",
	)
	return r.Replace(s)
}
