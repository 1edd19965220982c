package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itsJino/slainte-llm/internal/model"
	"github.com/itsJino/slainte-llm/internal/service"
)

type SearchHandler struct {
	kb *service.KnowledgeBaseService
}

func NewSearchHandler(kb *service.KnowledgeBaseService) *SearchHandler {
	return &SearchHandler{kb: kb}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Error: %v", err)
		return
	}
	c.String(http.StatusOK, h.kb.Search(c.Request.Context(), req.Query, 0))
}

func (h *SearchHandler) Advanced(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Error: %v", err)
		return
	}
	c.String(http.StatusOK, h.kb.Search(c.Request.Context(), req.Query, req.TopK))
}

func (h *SearchHandler) Structured(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, err)
		return
	}
	documents := h.kb.SearchDocuments(c.Request.Context(), req.Query, req.TopK)
	if documents == nil {
		documents = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

func (h *SearchHandler) LastContext(c *gin.Context) {
	c.JSON(http.StatusOK, h.kb.LastContextInfo())
}

func (h *SearchHandler) RawResults(c *gin.Context) {
	raw := h.kb.LastRawResults()
	if raw == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, raw)
}
