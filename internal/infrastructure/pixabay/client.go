// Package pixabay 提供 Pixabay 图片搜索客户端
package pixabay

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
	"z-appgen-ai-api/internal/domain/entity"
)

var tracer = otel.Tracer("pixabay")

// ImageType Pixabay 图片类型
type ImageType string

const (
	ImageTypePhoto        ImageType = "photo"
	ImageTypeIllustration ImageType = "illustration"
)

// Client Pixabay API 客户端
type Client struct {
	cfg  *config.PixabayConfig
	http *http.Client
}

// NewClient 创建 Pixabay 客户端
func NewClient(cfg *config.PixabayConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchResponse struct {
	Total int `json:"total"`
	Hits  []struct {
		WebformatURL string `json:"webformatURL"`
		Tags         string `json:"tags"`
	} `json:"hits"`
}

// Search 按关键词搜索图片，返回 {描述, URL} 列表
func (c *Client) Search(ctx context.Context, query string, imageType ImageType, category entity.ImageCategory) ([]entity.ImageResource, error) {
	ctx, span := tracer.Start(ctx, "pixabay.Search",
		trace.WithAttributes(
			attribute.String("pixabay.query", query),
			attribute.String("pixabay.image_type", string(imageType)),
		))
	defer span.End()

	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("pixabay api key not configured")
	}

	perPage := c.cfg.PerPage
	if perPage <= 0 {
		perPage = 12
	}

	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("q", query)
	params.Set("image_type", string(imageType))
	params.Set("per_page", fmt.Sprintf("%d", perPage))
	params.Set("safesearch", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build pixabay request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("pixabay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("pixabay returned status %d", resp.StatusCode)
		span.RecordError(err)
		return nil, err
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode pixabay response: %w", err)
	}

	resources := make([]entity.ImageResource, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if hit.WebformatURL == "" {
			continue
		}
		resources = append(resources, entity.ImageResource{
			Category:    category,
			Description: hit.Tags,
			URL:         hit.WebformatURL,
		})
	}

	span.SetAttributes(attribute.Int("pixabay.result_count", len(resources)))
	return resources, nil
}

// SearchPhotos 搜索内容图片
func (c *Client) SearchPhotos(ctx context.Context, query string) ([]entity.ImageResource, error) {
	return c.Search(ctx, query, ImageTypePhoto, entity.ImageCategoryContent)
}

// SearchIllustrations 搜索插画
func (c *Client) SearchIllustrations(ctx context.Context, query string) ([]entity.ImageResource, error) {
	return c.Search(ctx, query, ImageTypeIllustration, entity.ImageCategoryIllustration)
}
