package storer

import "context"

type Storer interface {
	Store(ctx context.Context, content string, metadata map[string]any, vector []float32) error
	Search(ctx context.Context, vector []float32, limit int) ([]Record, error)
	// Flush makes every stored record durable. Stores that write through on
	// Store treat it as a no-op.
	Flush(ctx context.Context) error
	Close() error
}
