package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/groomwise/generator"
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.options.Model),
		MaxTokens:   int64(g.options.MaxTokens),
		Temperature: anthropic.Float(float64(g.options.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	// the API rejects whitespace-only stop sequences
	for _, stop := range g.options.Stop {
		if len(strings.TrimSpace(stop)) > 0 {
			req.StopSequences = append(req.StopSequences, stop)
		}
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", fmt.Errorf("%w from Anthropic", generator.ErrNoResponse)
	}

	return result, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &anthropicGenerator{
		options: options,
	}

	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(options.ApiKey),
	}
	if len(options.BaseURL) > 0 {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(options.BaseURL))
	}

	client := anthropic.NewClient(clientOpts...)

	g.client = &client

	return g
}
