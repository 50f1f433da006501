// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"

	"z-appgen-ai-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	authHandler *handler.AuthHandler,
	appHandler *handler.AppHandler,
	userHandler *handler.UserHandler,
) {
	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// 应用管理
	apps := v1.Group("/apps")
	{
		apps.GET("/featured", appHandler.ListFeatured)

		apps.GET("", appHandler.ListMine)
		apps.POST("", appHandler.Create)
		apps.GET("/:id", appHandler.Get)
		apps.PUT("/:id/name", appHandler.UpdateName)
		apps.DELETE("/:id", appHandler.Delete)

		// 生成
		apps.GET("/:id/chat", appHandler.Chat) // SSE
		apps.POST("/:id/generate", appHandler.InitialGenerate)

		// 部署与产物
		apps.POST("/:id/deploy", appHandler.Deploy)
		apps.GET("/:id/download", appHandler.Download)

		// 对话历史
		apps.GET("/:id/history", appHandler.ListHistory)
	}

	// 用户管理
	users := v1.Group("/users")
	{
		users.GET("/me", userHandler.Me)
		users.PUT("/me", userHandler.UpdateMe)
	}
}
