package handler

import (
	"errors"
	"net/http"

	"shortly-platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieOptions 会话 Cookie 参数
type CookieOptions struct {
	Name   string
	MaxAge int
	// Secure 生产环境下启用 Secure 并使用 SameSite=None 以支持跨域前端
	Secure bool
}

// AuthHandler 包含认证相关的处理器
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieOptions
}

// NewAuthHandler 创建一个新的 AuthHandler
func NewAuthHandler(auth *service.AuthService, cookie CookieOptions) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthHandler{auth: auth, cookie: cookie}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100" example:"Ada"`
	Email    string `json:"email" binding:"required,max=100" example:"ada@example.com"`
	Password string `json:"password" binding:"required,max=128" example:"correct-horse"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"correct-horse"`
}

// AuthResponse 认证接口的统一响应
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register godoc
// @Summary 用户注册
// @Description 创建用户并通过 HTTP-only Cookie 建立会话
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   account  body   RegisterRequest  true  "注册信息"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} AuthResponse "请求无效"
// @Failure 409 {object} AuthResponse "用户已存在"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, AuthResponse{Message: validationMessage(err)})
		return
	}

	_, token, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, AuthResponse{Message: "User already exists"})
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, AuthResponse{Message: "Please enter a valid email"})
		case errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, AuthResponse{Message: "Please enter a strong password"})
		default:
			zap.S().Errorw("注册失败", "error", err)
			c.JSON(http.StatusInternalServerError, AuthResponse{Message: "Error in creating user"})
		}
		return
	}

	h.setSession(c, token)
	c.JSON(http.StatusCreated, AuthResponse{Success: true, Message: "User registered successfully"})
}

// Login godoc
// @Summary 用户登录
// @Description 校验邮箱和密码，并通过 HTTP-only Cookie 建立会话
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   account  body   LoginRequest  true  "登录凭据"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} AuthResponse "用户不存在"
// @Failure 401 {object} AuthResponse "密码错误"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, AuthResponse{Message: validationMessage(err)})
		return
	}

	_, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, AuthResponse{Message: "User does not exist"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, AuthResponse{Message: "Invalid credentials"})
		default:
			zap.S().Errorw("登录失败", "error", err)
			c.JSON(http.StatusInternalServerError, AuthResponse{Message: "Unable to authenticate you"})
		}
		return
	}

	h.setSession(c, token)
	c.JSON(http.StatusOK, AuthResponse{Success: true, Message: "Login successful"})
}

// Logout godoc
// @Summary 退出登录
// @Description 清除会话 Cookie，启用 Redis 时同时吊销令牌
// @Tags Auth
// @Produce  json
// @Success 200 {object} AuthResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil {
		h.auth.Logout(c.Request.Context(), token)
	}
	h.applySameSite(c)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, AuthResponse{Success: true, Message: "Logged out successfully"})
}

func (h *AuthHandler) setSession(c *gin.Context, token string) {
	h.applySameSite(c)
	c.SetCookie(h.cookie.Name, token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) applySameSite(c *gin.Context) {
	if h.cookie.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
}
