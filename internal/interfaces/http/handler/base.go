// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"z-appgen-ai-api/internal/interfaces/http/dto"
	"z-appgen-ai-api/pkg/errors"
	"z-appgen-ai-api/pkg/logger"
)

// respondError 把业务错误映射为统一的 HTTP 错误响应。
// AppError 按错误码映射状态码，其它错误一律按 500 处理。
func respondError(c *gin.Context, err error) {
	if appErr := errors.AsAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		var detail *dto.ErrorDetail
		if appErr.Detail != "" {
			detail = &dto.ErrorDetail{
				ErrorCode: string(appErr.Code),
				Details:   appErr.Detail,
			}
		} else {
			detail = &dto.ErrorDetail{ErrorCode: string(appErr.Code)}
		}
		if status >= http.StatusInternalServerError {
			logger.Error(c.Request.Context(), "请求处理失败", err, "path", c.Request.URL.Path)
		}
		dto.ErrorWithDetail(c, status, appErr.Message, detail)
		return
	}

	logger.Error(c.Request.Context(), "请求处理失败", err, "path", c.Request.URL.Path)
	dto.InternalError(c, "internal server error")
}

// currentUserID 取认证中间件注入的用户 ID
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
