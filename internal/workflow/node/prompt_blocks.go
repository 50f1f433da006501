package node

import (
	"strings"

	"z-appgen-ai-api/internal/domain/entity"
)

// BuildImagesBlock 把素材收集结果拼接为提示词中的素材清单段落
func BuildImagesBlock(images []entity.ImageResource) string {
	if len(images) == 0 {
		return ""
	}
	lines := make([]string, 0, len(images)+1)
	lines = append(lines, "可用素材（在页面中按需引用 URL）：")
	for _, img := range images {
		desc := strings.TrimSpace(img.Description)
		url := strings.TrimSpace(img.URL)
		if url == "" {
			continue
		}
		if desc == "" {
			desc = string(img.Category)
		}
		lines = append(lines, "- ["+string(img.Category)+"] "+desc+": "+url)
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}
