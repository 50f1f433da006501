// Package imagegen 提供 Logo 图片生成客户端（OpenAI 兼容图片生成接口）
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
)

var tracer = otel.Tracer("imagegen")

// Client 图片生成客户端
type Client struct {
	cfg  *config.LogoConfig
	http *http.Client
}

// NewClient 创建图片生成客户端
func NewClient(cfg *config.LogoConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generateResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GenerateLogo 根据描述生成 Logo，返回生成的图片 URL
func (c *Client) GenerateLogo(ctx context.Context, description string) (*entity.ImageResource, error) {
	ctx, span := tracer.Start(ctx, "imagegen.GenerateLogo",
		trace.WithAttributes(attribute.String("imagegen.model", c.cfg.Model)))
	defer span.End()

	if c.cfg.APIKey == "" || c.cfg.BaseURL == "" {
		return nil, fmt.Errorf("imagegen client not configured")
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: "设计一个简洁现代的网站 Logo：" + description,
		N:      1,
		Size:   "512x512",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal imagegen request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build imagegen request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("imagegen request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("imagegen service returned status %d", resp.StatusCode)
		span.RecordError(err)
		return nil, err
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode imagegen response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return nil, fmt.Errorf("imagegen returned no image")
	}

	return &entity.ImageResource{
		Category:    entity.ImageCategoryLogo,
		Description: description,
		URL:         result.Data[0].URL,
	}, nil
}
