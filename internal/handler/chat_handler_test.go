package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/itsJino/slainte-llm/internal/ai"
	"github.com/itsJino/slainte-llm/internal/chroma"
	"github.com/itsJino/slainte-llm/internal/service"
)

// testBackend fakes the three upstream services and records what the
// pipeline actually sent them.
type testBackend struct {
	embedServer  *httptest.Server
	chromaServer *httptest.Server
	llmServer    *httptest.Server

	embedTexts  []string
	llmPrompts  []string
	chromaDocs  [][]string
	llmResponse string
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{
		chromaDocs: [][]string{{
			"A GP visit card lets you visit a participating family doctor for free. " +
				"You can apply online through the HSE website.",
		}},
		llmResponse: "Here is the info.",
	}

	b.embedServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b.embedTexts = append(b.embedTexts, req.Text)
		embedding := make([]float64, 768)
		embedding[0] = 0.5
		json.NewEncoder(w).Encode(map[string]interface{}{"embedding": embedding})
	}))
	t.Cleanup(b.embedServer.Close)

	b.chromaServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"documents": b.chromaDocs,
			"metadatas": [][]map[string]interface{}{{{"source": "https://www2.hse.ie/gp-visit-cards"}}},
			"distances": [][]float64{{0.1}},
		})
	}))
	t.Cleanup(b.chromaServer.Close)

	b.llmServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b.llmPrompts = append(b.llmPrompts, req.Prompt)
		fmt.Fprintf(w, `{"response":%q}`, b.llmResponse)
	}))
	t.Cleanup(b.llmServer.Close)

	return b
}

func newTestRouter(t *testing.T, b *testBackend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	embedder := ai.NewEmbedder(ai.EmbedderConfig{URL: b.embedServer.URL})
	store := chroma.New(chroma.Config{
		URL:          b.chromaServer.URL,
		CollectionID: "4b704b22-bbe9-4f7c-a8d2-9c5cb5e6cc1b",
		Dimension:    768,
		CacheSize:    16,
		CacheTTL:     time.Minute,
	})
	generator := ai.NewGenerator(ai.GeneratorConfig{URL: b.llmServer.URL, Model: "deepseek-r1:1.5b"})

	recorder := service.NewDiagnosticsRecorder()
	kb := service.NewKnowledgeBaseService(embedder, store, recorder, 20, 20)
	chat := service.NewChatService(kb, generator)

	r := gin.New()
	RegisterRoutes(r.Group("/api"), RouterDeps{
		Chat:        NewChatHandler(chat),
		Search:      NewSearchHandler(kb),
		Diagnostics: NewDiagnosticHandler(embedder, store),
	})
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func getJSON(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestChat_GroundedAnswer(t *testing.T) {
	b := newTestBackend(t)
	r := newTestRouter(t, b)

	w := postJSON(r, "/api/llm/chat", `{
		"messages":[{"role":"user","content":"How do I get a GP visit card?"}]
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Here is the info.", w.Body.String())

	// The GP visit card mention rewrites the retrieval query but the prompt
	// still carries the user's own words.
	require.Equal(t, []string{"Information on GP Visit Card eligibility and application process"}, b.embedTexts)
	require.Len(t, b.llmPrompts, 1)
	prompt := b.llmPrompts[0]
	require.Contains(t, prompt, "### HSE INFORMATION ON GP VISIT CARD ###")
	require.Contains(t, prompt, "### END OF HSE INFORMATION ###")
	require.Contains(t, prompt, "[Source: https://www2.hse.ie/gp-visit-cards]")
	require.Contains(t, prompt, "please answer the following query: How do I get a GP visit card?")
}

func TestChat_AssessmentBypassSkipsRetrieval(t *testing.T) {
	b := newTestBackend(t)
	r := newTestRouter(t, b)

	w := postJSON(r, "/api/llm/chat", `{
		"messages":[
			{"role":"system","content":"Please start assessment for this patient"},
			{"role":"user","content":"I have a headache"}
		]
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, b.embedTexts, "assessment mode must not touch retrieval")
	require.Equal(t, []string{"I have a headache"}, b.llmPrompts)
}

func TestChat_FallbackOnShortContext(t *testing.T) {
	b := newTestBackend(t)
	b.chromaDocs = [][]string{{"short"}}
	r := newTestRouter(t, b)

	w := postJSON(r, "/api/llm/chat", `{
		"messages":[{"role":"user","content":"Tell me about the medical card"}]
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{
		"Tell me about the medical card",
		"Medical Card information HSE",
	}, b.embedTexts)
}

func TestChat_PromptFieldFallback(t *testing.T) {
	b := newTestBackend(t)
	r := newTestRouter(t, b)

	w := postJSON(r, "/api/llm/chat", `{"prompt":"What vaccinations does my baby need?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"What vaccinations does my baby need?"}, b.embedTexts)
}

func TestChat_MalformedBody(t *testing.T) {
	b := newTestBackend(t)
	r := newTestRouter(t, b)

	w := postJSON(r, "/api/llm/chat", `{not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.True(t, strings.HasPrefix(w.Body.String(), "Error:"), w.Body.String())
}

func TestChat_StoreDownUsesPlaceholder(t *testing.T) {
	b := newTestBackend(t)
	r := newTestRouter(t, b)
	b.chromaServer.Close()

	w := postJSON(r, "/api/llm/chat", `{
		"messages":[{"role":"user","content":"Tell me about diabetes care"}]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	// The transport error string from the real store client must trigger the
	// fallback re-query and then the placeholder, never a bare prompt.
	require.Equal(t, []string{
		"Tell me about diabetes care",
		"Diabetes information HSE",
	}, b.embedTexts)
	require.Len(t, b.llmPrompts, 1)
	require.Contains(t, b.llmPrompts[0], "No relevant information found about Diabetes in the HSE knowledge base.")
	require.NotContains(t, b.llmPrompts[0], "Error querying ChromaDB:")
}

func TestChat_LLMDown(t *testing.T) {
	b := newTestBackend(t)
	r := newTestRouter(t, b)
	b.llmServer.Close()

	w := postJSON(r, "/api/llm/chat", `{
		"messages":[{"role":"user","content":"How do I get a GP visit card?"}]
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Body.String(), "Error retrieving response:"), w.Body.String())
}

func TestDebug_MirrorsChatPrompt(t *testing.T) {
	b := newTestBackend(t)
	r := newTestRouter(t, b)

	body := `{"messages":[{"role":"user","content":"How do I get a GP visit card?"}]}`

	w := postJSON(r, "/api/llm/debug", body)
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, "How do I get a GP visit card?", out["userMessage"])
	require.Equal(t, true, out["useRag"])
	require.Equal(t, "GP Visit Card", out["detectedTopic"])
	require.Equal(t, "Information on GP Visit Card eligibility and application process", out["specializedQuery"])
	require.NotContains(t, out, "fallbackQuery")

	// The chat path wraps the same final prompt in the persona preamble.
	postJSON(r, "/api/llm/chat", body)
	require.Len(t, b.llmPrompts, 1)
	finalPrompt, _ := out["finalPrompt"].(string)
	require.NotEmpty(t, finalPrompt)
	require.Contains(t, b.llmPrompts[0], finalPrompt)
}

func TestDebug_NoRagOmitsRetrievalFields(t *testing.T) {
	b := newTestBackend(t)
	r := newTestRouter(t, b)

	w := postJSON(r, "/api/llm/debug", `{"prompt":"hello","useRag":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, false, out["useRag"])
	require.Equal(t, "hello", out["finalPrompt"])
	require.NotContains(t, out, "detectedTopic")
	require.NotContains(t, out, "retrievedContext")
}
