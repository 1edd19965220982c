package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itsJino/slainte-llm/internal/ai"
	"github.com/itsJino/slainte-llm/internal/chroma"
	"github.com/itsJino/slainte-llm/internal/model"
	"github.com/itsJino/slainte-llm/internal/service"
)

// DiagnosticHandler gives operators direct visibility into the embedding
// and vector-store layers, bypassing the chat pipeline.
type DiagnosticHandler struct {
	embedder ai.IEmbedder
	store    service.VectorStore
}

func NewDiagnosticHandler(embedder ai.IEmbedder, store service.VectorStore) *DiagnosticHandler {
	return &DiagnosticHandler{embedder: embedder, store: store}
}

func (h *DiagnosticHandler) DebugSearch(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, err)
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}

	ctx := c.Request.Context()
	embedding, err := h.embedder.Embed(ctx, req.Query)
	if err != nil {
		failJSON(c, err)
		return
	}

	firstFew := embedding
	if len(firstFew) > 5 {
		firstFew = firstFew[:5]
	}

	raw, err := h.store.RawQuery(ctx, embedding, topK)
	if err != nil {
		failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":             req.Query,
		"topK":              topK,
		"embeddingSize":     len(embedding),
		"embeddingFirstFew": firstFew,
		"rawResults":        raw,
		"textResults":       chroma.FormatResult(raw),
		"documents":         chroma.ExtractDocuments(raw),
	})
}

func (h *DiagnosticHandler) Heartbeat(c *gin.Context) {
	body, err := h.store.Heartbeat(c.Request.Context())
	if err != nil {
		failJSON(c, err)
		return
	}
	c.String(http.StatusOK, body)
}

func (h *DiagnosticHandler) Collections(c *gin.Context) {
	raw, err := h.store.ListCollections(c.Request.Context())
	if err != nil {
		failJSON(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
