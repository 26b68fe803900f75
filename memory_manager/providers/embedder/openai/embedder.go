package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/groomwise/memory_manager/providers/embedder"
)

const DefaultModel = "text-embedding-3-small"

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.options.Model),
		Dimensions: e.options.Dimension,
	})
	if err != nil {
		return nil, err
	}

	if len(rsp.Data) == 0 {
		return nil, fmt.Errorf("%w from OpenAI", embedder.ErrNoEmbedding)
	}

	vector := rsp.Data[0].Embedding

	if err := embedder.Validate("OpenAI", vector, e.options.Dimension); err != nil {
		return nil, err
	}

	return vector, nil
}

func (e *openAIEmbedder) Dimension() int {
	return e.options.Dimension
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = DefaultModel
	}

	e := &openAIEmbedder{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)
	if len(options.BaseURL) > 0 {
		config.BaseURL = options.BaseURL
	}

	e.client = openai.NewClientWithConfig(config)

	return e
}
