package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	pkgerrors "github.com/itsJino/slainte-llm/internal/pkg/errors"
)

const (
	maxEmbedInputBytes  = 8 * 1024
	embedConnectTimeout = 10 * time.Second
	embedTotalTimeout   = 30 * time.Second
)

type EmbedderConfig struct {
	// URL of the embedding endpoint, e.g. http://localhost:5000/embed.
	URL string
	// Model is only sent in direct mode (talking straight to Ollama).
	Model string
	// Direct switches the request body from {text} to {model, prompt}.
	Direct bool
}

type httpEmbedder struct {
	cfg    EmbedderConfig
	client *http.Client
}

// NewEmbedder builds the HTTP client for the external embedding service.
func NewEmbedder(cfg EmbedderConfig) IEmbedder {
	return &httpEmbedder{
		cfg: cfg,
		client: &http.Client{
			Timeout: embedTotalTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: embedConnectTimeout}).DialContext,
			},
		},
	}
}

type embedProxyRequest struct {
	Text string `json:"text"`
}

type embedDirectRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (e *httpEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input text", pkgerrors.ErrInvalid)
	}
	if len(trimmed) > maxEmbedInputBytes {
		return nil, fmt.Errorf("%w: input text exceeds %d bytes", pkgerrors.ErrInvalid, maxEmbedInputBytes)
	}

	var payload interface{}
	if e.cfg.Direct {
		payload = embedDirectRequest{Model: e.cfg.Model, Prompt: text}
	} else {
		payload = embedProxyRequest{Text: text}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		logutil.GetLogger(ctx).Warn("embedding request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		logutil.GetLogger(ctx).Warn("embedding service returned error",
			zap.String("status", resp.Status),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: embedding service status %s", ErrUnavailable, resp.Status)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logutil.GetLogger(ctx).Warn("embedding response decode failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(out.Embedding) == 0 {
		logutil.GetLogger(ctx).Warn("embedding response missing embedding field")
		return nil, fmt.Errorf("%w: no embedding in response", ErrBadResponse)
	}
	return out.Embedding, nil
}
