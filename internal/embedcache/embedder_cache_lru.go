package embedcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"golang.org/x/sync/singleflight"

	"github.com/itsJino/slainte-llm/internal/ai"
)

// WrapLRUCache memoizes embeddings by exact input text. Concurrent misses
// for the same text are coalesced into a single upstream call, so identical
// warm-up queries cannot stampede the embedding service.
func WrapLRUCache(e ai.IEmbedder, size int, ttl time.Duration) ai.IEmbedder {
	if e == nil || size <= 0 || ttl <= 0 {
		return e
	}
	return &lruEmbedder{
		next:  e,
		cache: expirable.NewLRU[string, []float64](size, nil, ttl),
	}
}

type lruEmbedder struct {
	next  ai.IEmbedder
	cache *expirable.LRU[string, []float64]
	group singleflight.Group
}

func (l *lruEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if cached, ok := l.cache.Get(text); ok {
		logutil.GetLogger(ctx).Debug("embedding cache hit")
		return cloneEmbedding(cached), nil
	}
	res, err, _ := l.group.Do(text, func() (interface{}, error) {
		if cached, ok := l.cache.Get(text); ok {
			return cloneEmbedding(cached), nil
		}
		// The flight serves every coalesced caller, so it must not die with
		// the first caller's context.
		emb, err := l.next.Embed(context.WithoutCancel(ctx), text)
		if err != nil {
			// Failures are never cached.
			return nil, err
		}
		l.cache.Add(text, cloneEmbedding(emb))
		return emb, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneEmbedding(res.([]float64)), nil
}

func cloneEmbedding(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float64, len(values))
	copy(clone, values)
	return clone
}
