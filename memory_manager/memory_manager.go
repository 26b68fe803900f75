package memorymanager

import (
	"context"
	"errors"
)

var ErrEmptyText = errors.New("memory text is empty")

type MemoryManager interface {
	// Recall returns up to k stored texts, most similar to query first.
	Recall(ctx context.Context, query string, k int) ([]string, error)
	Remember(ctx context.Context, text string, opts ...RememberOption) error
	Persist(ctx context.Context) error
	Close() error
}
