// Package dto 提供 HTTP 层数据传输对象
package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Account  string `json:"account" binding:"required,min=4,max=100"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Name     string `json:"name" binding:"omitempty,max=100"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新 Token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse Token 响应
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User   *UserResponse  `json:"user"`
	Tokens *TokenResponse `json:"tokens"`
}
