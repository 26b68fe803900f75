package utcp

import (
	"context"

	"github.com/universal-tool-calling-protocol/go-utcp"
	toolprovider "github.com/w-h-a/groomwise/tool_provider"
)

type utcpClientKey struct{}

func WithUtcpClient(client utcp.UtcpClientInterface) toolprovider.Option {
	return func(o *toolprovider.Options) {
		o.Context = context.WithValue(o.Context, utcpClientKey{}, client)
	}
}

func UtcpClientFrom(ctx context.Context) (utcp.UtcpClientInterface, bool) {
	client, ok := ctx.Value(utcpClientKey{}).(utcp.UtcpClientInterface)
	return client, ok
}

type nameKey struct{}

func WithToolName(name string) toolprovider.Option {
	return func(o *toolprovider.Options) {
		o.Context = context.WithValue(o.Context, nameKey{}, name)
	}
}

func ToolNameFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(nameKey{}).(string)
	return name, ok
}

type descriptionKey struct{}

func WithToolDescription(description string) toolprovider.Option {
	return func(o *toolprovider.Options) {
		o.Context = context.WithValue(o.Context, descriptionKey{}, description)
	}
}

func ToolDescriptionFrom(ctx context.Context) (string, bool) {
	description, ok := ctx.Value(descriptionKey{}).(string)
	return description, ok
}
