package entity

import (
	"github.com/google/uuid"
)

// NewID 生成时间有序的全局唯一 ID（UUIDv7）。
// 极少数情况下随机源不可用时回退到 UUIDv4。
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
