// Package dto 提供 HTTP 层数据传输对象
package dto

// PageQuery 通用分页查询参数
type PageQuery struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}
