package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Asker 问答服务
type Asker interface {
	Ask(ctx context.Context, question string) (json.RawMessage, error)
}

// ChatHandler 问答代理处理器
type ChatHandler struct {
	chat Asker
}

func NewChatHandler(chat Asker) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatRequest 问答请求
type ChatRequest struct {
	Question string `json:"question" binding:"required,max=4000"`
}

// Chat godoc
// @Summary 问答代理
// @Description 把问题转发给外部问答服务并原样返回答案，上游失败时返回 500
// @Tags Bot
// @Accept  json
// @Produce  json
// @Param   body  body   ChatRequest  true  "问题"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string "请求无效"
// @Failure 500 {object} map[string]string "上游失败"
// @Router /api/bot/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	answer, err := h.chat.Ask(c.Request.Context(), req.Question)
	if err != nil {
		zap.S().Errorw("问答代理失败", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error in chat service"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", answer)
}
