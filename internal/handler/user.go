package handler

import (
	"errors"
	"net/http"

	"shortly-platform/internal/middleware"
	"shortly-platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler 用户资料相关处理器
type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// ProfileResponse 用户资料
type ProfileResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required,max=128"`
	NewPassword string `json:"newPassword" binding:"required,max=128"`
}

// GetProfile godoc
// @Summary 当前用户资料
// @Tags User
// @Produce  json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} map[string]string "未认证"
// @Router /api/user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Name: user.Name, Email: user.Email})
}

// ChangePassword godoc
// @Summary 修改密码
// @Tags User
// @Accept  json
// @Produce  json
// @Param   body  body   ChangePasswordRequest  true  "旧密码与新密码"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} AuthResponse "新密码不合法"
// @Failure 401 {object} AuthResponse "旧密码错误"
// @Router /api/user/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	var req ChangePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, AuthResponse{Message: validationMessage(err)})
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, AuthResponse{Success: true, Message: "Password updated successfully"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, AuthResponse{Message: "Current password is incorrect"})
	case errors.Is(err, service.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, AuthResponse{Message: "Please enter a strong password"})
	case errors.Is(err, service.ErrSamePassword):
		c.JSON(http.StatusBadRequest, AuthResponse{Message: "New password must be different from the current one"})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
	default:
		zap.S().Errorw("修改密码失败", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, AuthResponse{Message: "Unable to update password"})
	}
}
