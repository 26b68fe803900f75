package utcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/universal-tool-calling-protocol/go-utcp"
	toolprovider "github.com/w-h-a/groomwise/tool_provider"
)

// Load discovers the tools served by the UTCP providers at options.Addrs
// and wraps each one as a ToolProvider.
func Load(ctx context.Context, query string, limit int, opts ...toolprovider.Option) ([]toolprovider.ToolProvider, error) {
	options := toolprovider.NewOptions(opts...)

	if len(options.Addrs) == 0 {
		return nil, nil
	}

	configPath, err := createTempConfig(options.Addrs)
	if err != nil {
		return nil, fmt.Errorf("write utcp providers file: %w", err)
	}
	defer os.Remove(configPath)

	client, err := utcp.NewUTCPClient(
		ctx,
		&utcp.UtcpClientConfig{
			ProvidersFilePath: configPath,
		},
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create utcp client: %w", err)
	}

	return Discover(client, query, limit)
}

// Discover wraps the tools an existing client finds for query.
func Discover(client utcp.UtcpClientInterface, query string, limit int) ([]toolprovider.ToolProvider, error) {
	remoteTools, err := client.SearchTools(query, limit)
	if err != nil {
		return nil, fmt.Errorf("utcp discovery failed: %w", err)
	}

	var providers []toolprovider.ToolProvider
	for _, tool := range remoteTools {
		providers = append(providers, NewToolProvider(
			WithUtcpClient(client),
			WithToolName(tool.Name),
			WithToolDescription(describe(tool.Description, tool.Inputs.Properties)),
		))
	}

	return providers, nil
}

// describe folds the input property names into the description so the model
// knows which JSON keys the tool expects.
func describe(description string, properties map[string]any) string {
	if len(properties) == 0 {
		return description
	}

	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return fmt.Sprintf("%s Input should be a JSON object with keys: %s.", strings.TrimSpace(description), strings.Join(keys, ", "))
}

func createTempConfig(addrs []string) (string, error) {
	type providerConfig struct {
		Type    string            `json:"provider_type"`
		Name    string            `json:"name"`
		URL     string            `json:"url"`
		Method  string            `json:"http_method"`
		Headers map[string]string `json:"headers"`
	}

	config := struct {
		Providers []providerConfig `json:"providers"`
	}{}

	for _, u := range addrs {
		parsed, err := url.Parse(u)
		if err != nil {
			return "", err
		}
		config.Providers = append(config.Providers, providerConfig{
			Type:   "http",
			Name:   parsed.Hostname(),
			URL:    u,
			Method: "POST",
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
		})
	}

	f, err := os.CreateTemp("", "utcp_config_*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(config); err != nil {
		return "", err
	}

	return f.Name(), nil
}
