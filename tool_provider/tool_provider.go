package toolprovider

import (
	"context"
	"errors"
)

var ErrEmptyInput = errors.New("tool input is empty")

// ToolProvider is a capability the agent can call by name. Description is
// shown to the model verbatim, so it should say what input Run expects.
type ToolProvider interface {
	Name() string
	Description() string
	Run(ctx context.Context, input string) (string, error)
}
