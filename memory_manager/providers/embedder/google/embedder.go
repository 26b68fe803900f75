package google

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/groomwise/memory_manager/providers/embedder"
	genaiopt "google.golang.org/api/option"
)

const DefaultModel = "text-embedding-004"

type googleEmbedder struct {
	options embedder.Options
	model   *genai.EmbeddingModel
}

func (e *googleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("google embed: %w", err)
	}

	if rsp == nil || rsp.Embedding == nil {
		return nil, fmt.Errorf("%w from Google", embedder.ErrNoEmbedding)
	}

	if err := embedder.Validate("Google", rsp.Embedding.Values, e.options.Dimension); err != nil {
		return nil, err
	}

	return rsp.Embedding.Values, nil
}

func (e *googleEmbedder) Dimension() int {
	return e.options.Dimension
}

// NewEmbedder uses one task type for queries and stored turns so both
// land in the same space.
func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = DefaultModel
	}

	client, err := genai.NewClient(
		options.Context,
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		panic(err)
	}

	model := client.EmbeddingModel(options.Model)
	model.TaskType = genai.TaskTypeSemanticSimilarity

	return &googleEmbedder{
		options: options,
		model:   model,
	}
}
