package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/itsJino/slainte-llm/internal/ai"
)

// CacheWarmupJob keeps the embedding cache hot for the canonical topic
// queries, so the fallback re-query path rarely has to wait on the
// embedding service.
type CacheWarmupJob struct {
	embedder ai.IEmbedder
	queries  []string
}

func NewCacheWarmupJob(embedder ai.IEmbedder, queries []string) *CacheWarmupJob {
	return &CacheWarmupJob{embedder: embedder, queries: queries}
}

func (j *CacheWarmupJob) Name() string {
	return "embedding_cache_warmup"
}

func (j *CacheWarmupJob) Run(ctx context.Context) error {
	for _, query := range j.queries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := j.embedder.Embed(ctx, query); err != nil {
			logutil.GetLogger(ctx).Warn("warmup embed failed",
				zap.String("query", query),
				zap.Error(err),
			)
		}
	}
	return nil
}
