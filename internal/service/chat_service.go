package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/itsJino/slainte-llm/internal/ai"
	"github.com/itsJino/slainte-llm/internal/model"
)

const (
	assessmentMarker = "start assessment"
	// Context shorter than this is treated as degraded and triggers the
	// fallback re-query.
	minUsableContextLen = 50

	gpVisitCardQuery = "Information on GP Visit Card eligibility and application process"
)

// Searcher is the retrieval capability the orchestrator depends on.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) string
	DefaultTopK() int
}

// ChatService orchestrates one chat turn: pick the user utterance, decide
// whether retrieval applies, ground the prompt, and invoke the LLM.
type ChatService struct {
	kb        Searcher
	generator ai.IGenerator
}

func NewChatService(kb Searcher, generator ai.IGenerator) *ChatService {
	return &ChatService{kb: kb, generator: generator}
}

// ChatResolution records every intermediate decision of one chat turn. The
// debug endpoint returns it verbatim, so the fields mirror exactly what the
// chat path sends to the LLM.
type ChatResolution struct {
	UserMessage      string
	UseRag           bool
	SpecializedQuery string
	DetectedTopic    string
	RetrievedContext string
	FallbackQuery    string
	FallbackContext  string
	FinalContext     string
	FinalPrompt      string
}

// Chat runs the full pipeline and returns the LLM reply. LLM failures are
// folded into Error-prefixed strings rather than surfaced as transport
// errors; the caller still sees a 200 with visible degradation.
func (s *ChatService) Chat(ctx context.Context, req *model.ChatRequest) string {
	resolution := s.Resolve(ctx, req)
	answer, err := s.generator.Generate(ctx, resolution.FinalPrompt)
	if err != nil {
		if errors.Is(err, ai.ErrBadResponse) {
			return fmt.Sprintf("Error parsing AI response: %v", err)
		}
		return fmt.Sprintf("Error retrieving response: %v", err)
	}
	return answer
}

// Resolve performs every step of a chat turn short of calling the LLM.
func (s *ChatService) Resolve(ctx context.Context, req *model.ChatRequest) *ChatResolution {
	logger := logutil.GetLogger(ctx)

	userMessage := latestUserMessage(req)
	r := &ChatResolution{
		UserMessage: userMessage,
		UseRag:      resolveUseRag(req),
	}
	logger.Info("processing chat request",
		zap.String("user_message", userMessage),
		zap.Bool("use_rag", r.UseRag),
	)

	if !r.UseRag {
		r.FinalPrompt = userMessage
		return r
	}

	r.DetectedTopic = DetectTopic(userMessage)

	query := userMessage
	if strings.Contains(strings.ToLower(userMessage), "gp visit card") {
		query = gpVisitCardQuery
		r.SpecializedQuery = query
	}

	topK := s.kb.DefaultTopK()
	r.RetrievedContext = s.kb.Search(ctx, query, topK)
	r.FinalContext = r.RetrievedContext

	if degraded(r.RetrievedContext) {
		r.FallbackQuery = r.DetectedTopic + " information HSE"
		logger.Warn("insufficient context, trying fallback query",
			zap.String("fallback_query", r.FallbackQuery),
		)
		r.FallbackContext = s.kb.Search(ctx, r.FallbackQuery, topK)
		r.FinalContext = r.FallbackContext
		if degraded(r.FallbackContext) {
			logger.Warn("fallback search also degraded")
			r.FinalContext = fmt.Sprintf("No relevant information found about %s in the HSE knowledge base.", r.DetectedTopic)
		}
	}

	r.FinalPrompt = ComposePrompt(r.FinalContext, userMessage, r.DetectedTopic)
	return r
}

// degraded matches every Error-prefixed context the pipeline can produce,
// including the store client's "Error from ChromaDB:" and "Error querying
// ChromaDB:" strings; ComposePrompt uses the same prefix.
func degraded(context string) bool {
	return strings.HasPrefix(context, "Error") || len(context) < minUsableContextLen
}

// latestUserMessage walks the message sequence backwards and picks the most
// recent user utterance; with no user message the raw prompt field stands in.
func latestUserMessage(req *model.ChatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == model.RoleUser {
			return req.Messages[i].Content
		}
	}
	return req.Prompt
}

// resolveUseRag applies the request flag (default true) and the assessment
// bypass: a system message announcing an assessment forces retrieval off.
func resolveUseRag(req *model.ChatRequest) bool {
	useRag := true
	if req.UseRag != nil {
		useRag = *req.UseRag
	}
	for _, msg := range req.Messages {
		if msg.Role == model.RoleSystem && strings.Contains(msg.Content, assessmentMarker) {
			return false
		}
	}
	return useRag
}
