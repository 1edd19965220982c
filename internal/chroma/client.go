package chroma

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/itsJino/slainte-llm/internal/model"
)

const queryTimeout = 30 * time.Second

type Config struct {
	// URL is the ChromaDB base address, e.g. http://localhost:8000.
	URL string
	// CollectionID is the UUID of the target collection. The collection is
	// addressed by UUID, never by name.
	CollectionID string
	// Dimension all query embeddings are coerced to.
	Dimension int
	// CacheSize and CacheTTL bound the raw-result memo. Zero disables it.
	CacheSize int
	CacheTTL  time.Duration
}

// Client queries a ChromaDB collection over its HTTP API.
type Client struct {
	cfg    Config
	client *http.Client
	cache  *expirable.LRU[string, *model.QueryResult]
}

func New(cfg Config) *Client {
	c := &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: queryTimeout},
	}
	if cfg.CacheSize > 0 && cfg.CacheTTL > 0 {
		c.cache = expirable.NewLRU[string, *model.QueryResult](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return c
}

type queryRequest struct {
	QueryEmbeddings [][]float64 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// coerce pads or truncates the embedding to the configured dimension.
func (c *Client) coerce(ctx context.Context, embedding []float64) []float64 {
	dim := c.cfg.Dimension
	if len(embedding) == dim {
		return embedding
	}
	logutil.GetLogger(ctx).Warn("adjusting embedding dimension",
		zap.Int("got", len(embedding)),
		zap.Int("want", dim),
	)
	if len(embedding) > dim {
		return embedding[:dim]
	}
	padded := make([]float64, dim)
	copy(padded, embedding)
	return padded
}

func cacheKey(embedding []float64, k int) string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, v := range embedding {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf)
	}
	return fmt.Sprintf("%s-%d", hex.EncodeToString(h.Sum(nil)), k)
}

// RawQuery runs a nearest-neighbor query and returns the store response as-is.
// Results are memoized by (embedding hash, k); failures are not cached.
func (c *Client) RawQuery(ctx context.Context, embedding []float64, k int) (*model.QueryResult, error) {
	embedding = c.coerce(ctx, embedding)
	key := cacheKey(embedding, k)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			logutil.GetLogger(ctx).Debug("retrieval cache hit", zap.Int("top_k", k))
			return cached, nil
		}
	}

	reqBody := queryRequest{
		QueryEmbeddings: [][]float64{embedding},
		NResults:        k,
		Include:         []string{"documents", "metadatas", "distances"},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("Error querying ChromaDB: %v", err)
	}
	endpoint := fmt.Sprintf("%s/api/v1/collections/%s/query", strings.TrimRight(c.cfg.URL, "/"), c.cfg.CollectionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("Error querying ChromaDB: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logutil.GetLogger(ctx).Error("chromadb query failed", zap.Error(err))
		return nil, fmt.Errorf("Error querying ChromaDB: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Error querying ChromaDB: %v", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logutil.GetLogger(ctx).Error("chromadb returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("Error from ChromaDB: %s", strings.TrimSpace(string(body)))
	}

	var result model.QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("Error querying ChromaDB: %v", err)
	}
	if c.cache != nil {
		c.cache.Add(key, &result)
	}
	return &result, nil
}

// Heartbeat checks the store's liveness endpoint and returns the raw body.
func (c *Client) Heartbeat(ctx context.Context) (string, error) {
	endpoint := strings.TrimRight(c.cfg.URL, "/") + "/api/v1/heartbeat"
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ListCollections fetches the collection listing for diagnostics.
func (c *Client) ListCollections(ctx context.Context) (json.RawMessage, error) {
	endpoint := strings.TrimRight(c.cfg.URL, "/") + "/api/v1/collections"
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("chromadb status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}
