package service

import (
	"context"
	"encoding/json"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/itsJino/slainte-llm/internal/ai"
	"github.com/itsJino/slainte-llm/internal/chroma"
	"github.com/itsJino/slainte-llm/internal/model"
)

// VectorStore is the capability the retrieval pipeline needs from the
// document store.
type VectorStore interface {
	RawQuery(ctx context.Context, embedding []float64, k int) (*model.QueryResult, error)
	Heartbeat(ctx context.Context) (string, error)
	ListCollections(ctx context.Context) (json.RawMessage, error)
}

// KnowledgeBaseService runs the retrieval pipeline: embed the query, search
// the vector store, record the outcome for diagnostics, and hand back the
// formatted context.
type KnowledgeBaseService struct {
	embedder    ai.IEmbedder
	store       VectorStore
	recorder    *DiagnosticsRecorder
	defaultTopK int
	maxTopK     int
}

func NewKnowledgeBaseService(embedder ai.IEmbedder, store VectorStore, recorder *DiagnosticsRecorder, defaultTopK, maxTopK int) *KnowledgeBaseService {
	if defaultTopK <= 0 {
		defaultTopK = 20
	}
	if maxTopK <= 0 {
		maxTopK = 20
	}
	return &KnowledgeBaseService{
		embedder:    embedder,
		store:       store,
		recorder:    recorder,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}
}

func (s *KnowledgeBaseService) DefaultTopK() int {
	return s.defaultTopK
}

func (s *KnowledgeBaseService) clampTopK(topK int) int {
	if topK == 0 {
		return s.defaultTopK
	}
	if topK < 1 {
		return 1
	}
	if topK > s.maxTopK {
		return s.maxTopK
	}
	return topK
}

// Search returns the formatted context for a query. Infrastructure failures
// are folded into Error-prefixed strings so the caller can apply its
// fallback policy uniformly.
func (s *KnowledgeBaseService) Search(ctx context.Context, query string, topK int) string {
	text, _ := s.search(ctx, query, topK)
	return text
}

// SearchDocuments returns just the document bodies for a query.
func (s *KnowledgeBaseService) SearchDocuments(ctx context.Context, query string, topK int) []string {
	_, raw := s.search(ctx, query, topK)
	return chroma.ExtractDocuments(raw)
}

func (s *KnowledgeBaseService) search(ctx context.Context, query string, topK int) (string, *model.QueryResult) {
	if query == "" {
		return "Error: Query cannot be empty.", nil
	}
	topK = s.clampTopK(topK)
	logger := logutil.GetLogger(ctx).With(zap.String("query", query), zap.Int("top_k", topK))

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil || len(embedding) == 0 {
		logger.Warn("failed to generate embedding", zap.Error(err))
		return "Error: Failed to generate embedding.", nil
	}
	logger.Debug("generated embedding", zap.Int("dimension", len(embedding)))

	raw, rawErr := s.store.RawQuery(ctx, embedding, topK)
	var text string
	if rawErr != nil {
		logger.Warn("vector store query failed", zap.Error(rawErr))
		text = rawErr.Error()
	} else {
		text = chroma.FormatResult(raw)
	}

	result := model.RetrievalResult{
		Documents: chroma.ExtractRetrieved(raw),
		Query:     query,
		Topic:     DetectTopic(query),
	}
	s.recorder.Record(result, raw, text)

	preview := text
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	logger.Info("retrieved context",
		zap.Int("context_length", len(text)),
		zap.Int("documents", raw.DocumentCount()),
		zap.String("preview", preview),
	)
	return text, raw
}

// LastContextInfo exposes the most recent retrieval for operators.
func (s *KnowledgeBaseService) LastContextInfo() map[string]interface{} {
	return s.recorder.ContextInfo()
}

// LastRawResults returns the raw store response of the most recent search.
func (s *KnowledgeBaseService) LastRawResults() *model.QueryResult {
	snap := s.recorder.Last()
	if snap == nil {
		return nil
	}
	return snap.Raw
}
