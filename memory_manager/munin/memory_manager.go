package munin

import (
	"context"
	"fmt"
	"strings"

	memorymanager "github.com/w-h-a/groomwise/memory_manager"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer"
)

type muninMemoryManager struct {
	options memorymanager.Options
}

func (m *muninMemoryManager) Recall(ctx context.Context, query string, k int) ([]string, error) {
	if k < 1 {
		return nil, nil
	}

	vec, err := m.options.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := m.options.Storer.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search memory: %w", err)
	}

	texts := make([]string, 0, len(records))
	for _, rec := range records {
		texts = append(texts, rec.Content)
	}

	m.options.Logger.Debug().
		Str("query", query).
		Int("k", k).
		Int("results", len(texts)).
		Msg("recalled memory")

	return texts, nil
}

func (m *muninMemoryManager) Remember(ctx context.Context, text string, opts ...memorymanager.RememberOption) error {
	if len(strings.TrimSpace(text)) == 0 {
		return memorymanager.ErrEmptyText
	}

	options := memorymanager.NewRememberOptions(opts...)

	vec, err := m.options.Embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed memory: %w", err)
	}

	if err := storer.CheckDimension(vec, m.options.Embedder.Dimension()); err != nil {
		return err
	}

	if err := m.options.Storer.Store(ctx, text, options.Metadata, vec); err != nil {
		return fmt.Errorf("store memory: %w", err)
	}

	return nil
}

func (m *muninMemoryManager) Persist(ctx context.Context) error {
	return m.options.Storer.Flush(ctx)
}

func (m *muninMemoryManager) Close() error {
	return m.options.Storer.Close()
}

func NewMemoryManager(opts ...memorymanager.Option) memorymanager.MemoryManager {
	options := memorymanager.NewOptions(opts...)

	if options.Storer == nil {
		panic("storer is required")
	}

	if options.Embedder == nil {
		panic("embedder is required")
	}

	return &muninMemoryManager{
		options: options,
	}
}
