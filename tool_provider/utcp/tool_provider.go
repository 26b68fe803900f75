package utcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/universal-tool-calling-protocol/go-utcp"
	toolprovider "github.com/w-h-a/groomwise/tool_provider"
)

type utcpToolProvider struct {
	options     toolprovider.Options
	client      utcp.UtcpClientInterface
	name        string
	description string
}

func (tp *utcpToolProvider) Name() string { return tp.name }

func (tp *utcpToolProvider) Description() string { return tp.description }

func (tp *utcpToolProvider) Run(ctx context.Context, input string) (string, error) {
	raw, err := tp.client.CallTool(ctx, tp.name, parseToolArguments(input))
	if err != nil {
		return "", err
	}

	switch v := raw.(type) {
	case string:
		return v, nil
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b), nil
		}
		return fmt.Sprintf("%v", v), nil
	}
}

func NewToolProvider(opts ...toolprovider.Option) toolprovider.ToolProvider {
	options := toolprovider.NewOptions(opts...)

	tp := &utcpToolProvider{
		options: options,
	}

	if client, ok := UtcpClientFrom(options.Context); ok {
		tp.client = client
	}

	if name, ok := ToolNameFrom(options.Context); ok {
		tp.name = name
	}

	if description, ok := ToolDescriptionFrom(options.Context); ok {
		tp.description = description
	}

	if tp.client == nil || len(tp.name) == 0 {
		panic("utcp client and tool name are required")
	}

	return tp
}
