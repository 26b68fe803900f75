package embedder

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoEmbedding    = errors.New("no embedding returned")
	ErrWrongDimension = errors.New("embedding has the wrong dimension")
)

// Embedder turns text into a vector. Every vector it returns has
// Dimension() entries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Validate checks a vector returned by a remote provider against the
// configured dimension. A dimension of zero accepts any non-empty vector.
func Validate(provider string, vector []float32, dimension int) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w from %s", ErrNoEmbedding, provider)
	}

	if dimension > 0 && len(vector) != dimension {
		return fmt.Errorf("%w: %s returned %d values, configured %d", ErrWrongDimension, provider, len(vector), dimension)
	}

	return nil
}
