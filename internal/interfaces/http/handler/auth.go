// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-appgen-ai-api/internal/application/user"
	"z-appgen-ai-api/internal/interfaces/http/dto"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	userService *user.Service
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(userService *user.Service) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Register 注册
// @Summary 用户注册
// @Description 创建新用户账号
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.Response[dto.UserResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.Register(c.Request.Context(), req.Account, req.Password, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, dto.ToUserResponse(u))
}

// Login 登录
// @Summary 账号密码登录
// @Description 校验账号密码并签发访问/刷新双 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.LoginResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.userService.Login(c.Request.Context(), req.Account, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, &dto.LoginResponse{
		User: dto.ToUserResponse(result.User),
		Tokens: &dto.TokenResponse{
			AccessToken:  result.Tokens.AccessToken,
			RefreshToken: result.Tokens.RefreshToken,
		},
	})
}

// Refresh 刷新 Token
// @Summary 刷新访问 Token
// @Description 使用刷新 Token 换发新的双 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "刷新 Token"
// @Success 200 {object} dto.Response[dto.TokenResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	tokens, err := h.userService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, &dto.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}
