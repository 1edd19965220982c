package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultGenerateTimeout = 120 * time.Second

// The persona preamble sent ahead of every prompt. The generation endpoint
// is prompt-based, so the persona travels inline rather than as a system
// message.
const systemPreamble = `You are Slainte, a friendly health advisor working for the Health Service Executive (HSE) in Ireland. ` +
	`Answer using only official HSE information. Keep responses concise and direct, use simple and clear language, ` +
	`and include HSE source URLs when they appear in the provided context. Do not provide medical diagnoses or ` +
	`personalised medical advice. For medical emergencies, advise contacting emergency services (112/999).`

type GeneratorConfig struct {
	// URL is the base address of the generation service, e.g. http://localhost:11434.
	URL string
	// Model identifies the generation model, e.g. deepseek-r1:1.5b.
	Model string
	// Timeout bounds the whole generate call. Zero means the default.
	Timeout time.Duration
}

type ollamaGenerator struct {
	cfg    GeneratorConfig
	client *http.Client
}

// NewGenerator builds the client for an Ollama-style /api/generate endpoint.
func NewGenerator(cfg GeneratorConfig) IGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &ollamaGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

func (g *ollamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	fullPrompt := systemPreamble + "\n\nUser: " + prompt + "\nAI:"

	// Temperature stays at zero for deterministic output.
	reqBody := generateRequest{
		Model:       g.cfg.Model,
		Prompt:      fullPrompt,
		Temperature: 0.0,
		Stream:      false,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	endpoint := strings.TrimRight(g.cfg.URL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		logutil.GetLogger(ctx).Error("llm request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		logutil.GetLogger(ctx).Error("llm returned error",
			zap.String("status", resp.Status),
			zap.ByteString("body", body),
		)
		return "", fmt.Errorf("%w: llm status %s", ErrUnavailable, resp.Status)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logutil.GetLogger(ctx).Error("llm response decode failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if out.Response == nil {
		return "No response from AI.", nil
	}
	return *out.Response, nil
}
