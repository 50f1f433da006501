// Package entity 定义领域实体
package entity

// ImageCategory 素材类别
type ImageCategory string

const (
	ImageCategoryContent      ImageCategory = "content"
	ImageCategoryIllustration ImageCategory = "illustration"
	ImageCategoryDiagram      ImageCategory = "diagram"
	ImageCategoryLogo         ImageCategory = "logo"
)

// ImageResource 素材收集结果，聚合后注入到生成上下文中
type ImageResource struct {
	Category    ImageCategory `json:"category"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
}
