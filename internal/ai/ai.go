package ai

import "context"

// IEmbedder converts text into a fixed-dimension vector.
type IEmbedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// IGenerator submits a composed prompt to the LLM and returns its one-shot reply.
type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
