package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/itsJino/slainte-llm/internal/pkg/errors"
)

func TestEmbed_ProxyMode(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"embedding":[0.1,0.2,0.3]}`))
	}))
	t.Cleanup(srv.Close)

	embedder := NewEmbedder(EmbedderConfig{URL: srv.URL})
	got, err := embedder.Embed(t.Context(), "gp visit card")
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.2, 0.3}, got)
	require.Equal(t, map[string]interface{}{"text": "gp visit card"}, captured)
}

func TestEmbed_DirectMode(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"embedding":[1]}`))
	}))
	t.Cleanup(srv.Close)

	embedder := NewEmbedder(EmbedderConfig{URL: srv.URL, Model: "nomic-embed-text", Direct: true})
	_, err := embedder.Embed(t.Context(), "hello")
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"model": "nomic-embed-text", "prompt": "hello"}, captured)
}

func TestEmbed_RejectsEmptyInput(t *testing.T) {
	embedder := NewEmbedder(EmbedderConfig{URL: "http://localhost:0"})
	_, err := embedder.Embed(t.Context(), "   \n ")
	require.ErrorIs(t, err, pkgerrors.ErrInvalid)
}

func TestEmbed_RejectsOversizedInput(t *testing.T) {
	embedder := NewEmbedder(EmbedderConfig{URL: "http://localhost:0"})
	_, err := embedder.Embed(t.Context(), strings.Repeat("a", 9*1024))
	require.ErrorIs(t, err, pkgerrors.ErrInvalid)
}

func TestEmbed_UpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	embedder := NewEmbedder(EmbedderConfig{URL: srv.URL})
	_, err := embedder.Embed(t.Context(), "hello")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestEmbed_MissingEmbeddingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":true}`))
	}))
	t.Cleanup(srv.Close)

	embedder := NewEmbedder(EmbedderConfig{URL: srv.URL})
	_, err := embedder.Embed(t.Context(), "hello")
	require.ErrorIs(t, err, ErrBadResponse)
}
