package storer

import (
	"errors"
	"fmt"
	"math"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

func CheckDimension(vector []float32, size int) error {
	if size > 0 && len(vector) != size {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), size)
	}
	return nil
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
