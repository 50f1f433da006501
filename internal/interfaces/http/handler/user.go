// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-appgen-ai-api/internal/application/user"
	"z-appgen-ai-api/internal/interfaces/http/dto"
)

// UserHandler 用户处理器
type UserHandler struct {
	userService *user.Service
}

// NewUserHandler 创建用户处理器
func NewUserHandler(userService *user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me 当前用户信息
// @Summary 获取当前用户
// @Tags User
// @Produce json
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.userService.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToUserResponse(u))
}

// UpdateMe 更新当前用户资料
// @Summary 更新当前用户资料
// @Tags User
// @Accept json
// @Produce json
// @Param body body dto.UpdateUserRequest true "用户资料"
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.UpdateProfile(c.Request.Context(), currentUserID(c), req.Name, req.AvatarURL)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToUserResponse(u))
}
