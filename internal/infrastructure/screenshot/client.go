// Package screenshot 提供网页截图服务客户端
package screenshot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-appgen-ai-api/internal/config"
)

var tracer = otel.Tracer("screenshot")

// Client 截图服务客户端
type Client struct {
	cfg  *config.ScreenshotConfig
	http *http.Client
}

// NewClient 创建截图服务客户端
func NewClient(cfg *config.ScreenshotConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type captureResponse struct {
	URL string `json:"url"`
}

// Capture 对目标页面截图，返回截图文件的可访问 URL
func (c *Client) Capture(ctx context.Context, pageURL string) (string, error) {
	ctx, span := tracer.Start(ctx, "screenshot.Capture",
		trace.WithAttributes(attribute.String("screenshot.page_url", pageURL)))
	defer span.End()

	if c.cfg.Endpoint == "" {
		return "", fmt.Errorf("screenshot endpoint not configured")
	}

	params := url.Values{}
	params.Set("url", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to build screenshot request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("screenshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("screenshot service returned status %d", resp.StatusCode)
		span.RecordError(err)
		return "", err
	}

	var result captureResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to decode screenshot response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("screenshot service returned empty url")
	}

	return result.URL, nil
}
