package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/w-h-a/groomwise"
	"github.com/w-h-a/groomwise/generator"
	"github.com/w-h-a/groomwise/generator/anthropic"
	"github.com/w-h-a/groomwise/generator/google"
	"github.com/w-h-a/groomwise/generator/openai"
	"github.com/w-h-a/groomwise/internal/config"
	"github.com/w-h-a/groomwise/internal/service/agent"
	memorymanager "github.com/w-h-a/groomwise/memory_manager"
	"github.com/w-h-a/groomwise/memory_manager/munin"
	"github.com/w-h-a/groomwise/memory_manager/providers/embedder"
	googleembedder "github.com/w-h-a/groomwise/memory_manager/providers/embedder/google"
	"github.com/w-h-a/groomwise/memory_manager/providers/embedder/hash"
	openaiembedder "github.com/w-h-a/groomwise/memory_manager/providers/embedder/openai"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer/memory"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer/postgres"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer/qdrant"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer/sqlite"
	"github.com/w-h-a/groomwise/prompt"
	toolprovider "github.com/w-h-a/groomwise/tool_provider"
	"github.com/w-h-a/groomwise/tool_provider/python"
	"github.com/w-h-a/groomwise/tool_provider/search"
	"github.com/w-h-a/groomwise/tool_provider/utcp"
)

const (
	// sqliteFile is created inside the memory location for the sqlite store.
	sqliteFile     = "memories.db"
	maxRemoteTools = 50
)

func newGenerator(cfg *config.Config) generator.Generator {
	opts := []generator.Option{
		generator.WithApiKey(cfg.ApiKey),
		generator.WithModel(cfg.Model),
		generator.WithBaseURL(cfg.ChatBaseURL()),
		generator.WithTemperature(cfg.Temperature),
		generator.WithMaxTokens(cfg.MaxTokens),
		generator.WithStop(agent.StopSequences...),
	}

	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewGenerator(opts...)
	case "google":
		return google.NewGenerator(opts...)
	default:
		return openai.NewGenerator(opts...)
	}
}

func newEmbedder(cfg *config.Config) embedder.Embedder {
	opts := []embedder.Option{
		embedder.WithApiKey(cfg.EmbeddingKey()),
		embedder.WithModel(cfg.EmbeddingModel),
		embedder.WithBaseURL(cfg.EmbedderBaseURL),
		embedder.WithDimension(cfg.EmbeddingDimension),
	}

	switch cfg.Embedder {
	case "openai":
		return openaiembedder.NewEmbedder(opts...)
	case "google":
		return googleembedder.NewEmbedder(opts...)
	default:
		return hash.NewEmbedder(opts...)
	}
}

func newStorer(cfg *config.Config) (storer.Storer, error) {
	opts := []storer.Option{
		storer.WithLocation(cfg.MemoryLocation),
		storer.WithApiKey(cfg.StoreKey),
		storer.WithCollection(cfg.Collection),
		storer.WithVectorSize(cfg.EmbeddingDimension),
	}

	switch cfg.Store {
	case "sqlite":
		opts[0] = storer.WithLocation(filepath.Join(cfg.MemoryLocation, sqliteFile))
		return sqlite.NewStorer(opts...)
	case "postgres":
		return postgres.NewStorer(opts...)
	case "qdrant":
		return qdrant.NewStorer(opts...)
	default:
		return memory.NewStorer(opts...)
	}
}

func newTools(ctx context.Context, cfg *config.Config, logger zerolog.Logger) []toolprovider.ToolProvider {
	tools := []toolprovider.ToolProvider{
		search.NewToolProvider(
			toolprovider.WithEndpoint(cfg.SearchEndpoint),
		),
		python.NewToolProvider(
			toolprovider.WithBinary(cfg.PythonBinary),
			toolprovider.WithTimeout(cfg.PythonTimeout),
		),
	}

	if len(cfg.ToolAddrs) > 0 {
		remote, err := utcp.Load(ctx, "", maxRemoteTools, toolprovider.WithAddrs(cfg.ToolAddrs...))
		if err != nil {
			logger.Warn().Err(err).Msg("remote tools unavailable")
		}
		tools = append(tools, remote...)
	}

	return tools
}

func newAdvisor(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*groomwise.Advisor, error) {
	s, err := newStorer(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s memory store: %w", cfg.Store, err)
	}

	memory := munin.NewMemoryManager(
		memorymanager.WithStorer(s),
		memorymanager.WithEmbedder(newEmbedder(cfg)),
		memorymanager.WithLogger(logger.With().Str("component", "memory").Logger()),
	)

	runner := agent.New(
		newGenerator(cfg),
		newTools(ctx, cfg, logger),
		agent.WithMaxIterations(cfg.MaxIterations),
		agent.WithVerbose(cfg.Verbose),
		agent.WithPromptOptions(prompt.WithExampleTools(search.Name, python.Name)),
		agent.WithLogger(logger.With().Str("component", "agent").Logger()),
	)

	return groomwise.New(
		memory,
		runner,
		groomwise.WithRecallK(cfg.RecallK),
		groomwise.WithLogger(logger),
	), nil
}
