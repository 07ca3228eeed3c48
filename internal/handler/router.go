package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Links *ShortLinkHandler
	Auth  *AuthHandler
	Users *UserHandler
	Chat  *ChatHandler
}

// RegisterRoutes 注册业务路由，authMiddleware 保护需要登录的接口
func RegisterRoutes(router gin.IRouter, h Handlers, authMiddleware gin.HandlerFunc) {
	router.GET("/health", h.Links.HealthCheck)

	api := router.Group("/api")

	url := api.Group("/url")
	{
		url.POST("/shorten", authMiddleware, h.Links.CreateShortLink)
		url.GET("/dashboard", authMiddleware, h.Links.GetDashboard)
		url.GET("/:shortId", h.Links.RedirectToOriginal)
		url.DELETE("/:shortId", authMiddleware, h.Links.DeleteLink)
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	user := api.Group("/user", authMiddleware)
	{
		user.GET("/profile", h.Users.GetProfile)
		user.PUT("/password", h.Users.ChangePassword)
	}

	bot := api.Group("/bot", authMiddleware)
	{
		bot.POST("/chat", h.Chat.Chat)
	}
}
