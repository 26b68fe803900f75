package generator

import (
	"context"
	"errors"
)

// ErrNoResponse is returned when a provider answers without any text.
var ErrNoResponse = errors.New("no response")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
