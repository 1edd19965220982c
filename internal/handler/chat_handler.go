package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itsJino/slainte-llm/internal/model"
	"github.com/itsJino/slainte-llm/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat answers a user question, grounded in retrieved HSE documents when
// RAG applies. Upstream degradation is reported inside a 200 body; only a
// malformed request produces a non-200.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Error: %v", err)
		return
	}
	answer := h.chat.Chat(c.Request.Context(), &req)
	c.String(http.StatusOK, answer)
}

// Debug resolves a chat request without invoking the LLM and reports every
// intermediate decision, including the exact prompt the chat path would send.
func (h *ChatHandler) Debug(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, err)
		return
	}
	r := h.chat.Resolve(c.Request.Context(), &req)

	out := gin.H{
		"userMessage": r.UserMessage,
		"useRag":      r.UseRag,
		"finalPrompt": r.FinalPrompt,
	}
	if r.UseRag {
		out["detectedTopic"] = r.DetectedTopic
		out["retrievedContext"] = r.RetrievedContext
		out["finalContext"] = r.FinalContext
		if r.SpecializedQuery != "" {
			out["specializedQuery"] = r.SpecializedQuery
		}
		if r.FallbackQuery != "" {
			out["fallbackQuery"] = r.FallbackQuery
			out["fallbackContext"] = r.FallbackContext
		}
	}
	c.JSON(http.StatusOK, out)
}
