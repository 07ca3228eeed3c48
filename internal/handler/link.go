package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"shortly-platform/internal/clientip"
	"shortly-platform/internal/middleware"
	"shortly-platform/internal/service"
	"shortly-platform/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShortLinkHandler 短链接相关处理器
type ShortLinkHandler struct {
	links   *service.LinkService
	baseURL string
	// prefix 短链接的路由前缀
	prefix string
}

// NewShortLinkHandler baseURL 为空时使用请求的 scheme://host
func NewShortLinkHandler(links *service.LinkService, baseURL string) *ShortLinkHandler {
	return &ShortLinkHandler{
		links:   links,
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  "/api/url/",
	}
}

// HealthCheck 健康检查
func (h *ShortLinkHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

// ShortenRequest 创建短链接请求
type ShortenRequest struct {
	OriginalURL string `json:"originalUrl" binding:"required,max=2048,httpurl" example:"https://github.com/gin-gonic/gin"`
}

// ShortenResponse 创建短链接响应
type ShortenResponse struct {
	ShortURL string `json:"shortUrl" example:"http://localhost:8080/api/url/abc123"`
	ShortID  string `json:"shortId" example:"abc123"`
	Message  string `json:"message,omitempty"`
}

// CreateShortLink godoc
// @Summary 创建短链接
// @Description 为长 URL 创建短链接；同一用户重复提交同一 URL 时返回已有短链接 (200)
// @Tags ShortLink
// @Accept  json
// @Produce  json
// @Param   body  body   ShortenRequest  true  "原始 URL"
// @Success 201 {object} ShortenResponse "新建"
// @Success 200 {object} ShortenResponse "已存在"
// @Failure 400 {object} map[string]string "请求无效"
// @Failure 401 {object} map[string]string "未认证"
// @Failure 500 {object} map[string]string "服务器内部错误"
// @Router /api/url/shorten [post]
func (h *ShortLinkHandler) CreateShortLink(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	var req ShortenRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	result, err := h.links.Shorten(c.Request.Context(), user.ID, req.OriginalURL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid URL"})
			return
		}
		zap.S().Errorw("创建短链接失败", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	resp := ShortenResponse{
		ShortURL: h.shortURL(c, result.Link.ShortID),
		ShortID:  result.Link.ShortID,
	}
	if result.Reused {
		resp.Message = "Short URL already exists for this user"
		c.JSON(http.StatusOK, resp)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RedirectToOriginal godoc
// @Summary 短链接跳转
// @Description 记录一次点击后 302 跳转到原始 URL
// @Tags ShortLink
// @Param   shortId  path  string  true  "短码"
// @Success 302
// @Failure 404 {object} map[string]string "短链接不存在"
// @Router /api/url/{shortId} [get]
func (h *ShortLinkHandler) RedirectToOriginal(c *gin.Context) {
	shortID := c.Param("shortId")

	target, err := h.links.Visit(c.Request.Context(), shortID, clientip.FromRequest(c.Request))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		zap.S().Errorw("短链接跳转失败", "short_id", shortID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	c.Redirect(http.StatusFound, target)
}

// GetDashboard godoc
// @Summary 仪表盘统计
// @Description 当前用户的短链接总数、点击总数、平均点击数及每个短链接的访问地区
// @Tags ShortLink
// @Produce  json
// @Success 200 {object} analytics.Dashboard
// @Failure 401 {object} map[string]string "未认证"
// @Failure 500 {object} map[string]string "服务器内部错误"
// @Router /api/url/dashboard [get]
func (h *ShortLinkHandler) GetDashboard(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	dashboard, err := h.links.Dashboard(c.Request.Context(), user.ID)
	if err != nil {
		zap.S().Errorw("获取仪表盘失败", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// DeleteLink godoc
// @Summary 删除短链接
// @Description 只能删除自己的短链接；不存在或不属于当前用户时一律返回 404
// @Tags ShortLink
// @Param   shortId  path  string  true  "短码"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string "短链接不存在"
// @Router /api/url/{shortId} [delete]
func (h *ShortLinkHandler) DeleteLink(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	shortID := c.Param("shortId")
	if err := h.links.Delete(c.Request.Context(), shortID, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		zap.S().Errorw("删除短链接失败", "short_id", shortID, "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "URL deleted successfully"})
}

// shortURL 拼接对外的短链接地址
func (h *ShortLinkHandler) shortURL(c *gin.Context, shortID string) string {
	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		} else if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + h.prefix + shortID
}
