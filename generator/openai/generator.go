package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/groomwise/generator"
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.options.Model,
		Temperature: g.options.Temperature,
		MaxTokens:   g.options.MaxTokens,
		Stop:        g.options.Stop,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", fmt.Errorf("%w from OpenAI", generator.ErrNoResponse)
	}

	return rsp.Choices[0].Message.Content, nil
}

// NewGenerator works against OpenAI itself and any API compatible host
// (Groq, Ollama, vLLM) selected with generator.WithBaseURL.
func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &openAIGenerator{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)
	if len(options.BaseURL) > 0 {
		config.BaseURL = options.BaseURL
	}

	g.client = openai.NewClientWithConfig(config)

	return g
}
