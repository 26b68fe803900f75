package utcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolArguments(t *testing.T) {
	assert.Equal(t, map[string]any{}, parseToolArguments("  "))
	assert.Equal(t, map[string]any{"sku": "A1", "qty": float64(2)}, parseToolArguments(`{"sku": "A1", "qty": 2}`))
	assert.Equal(t, map[string]any{"items": []any{"a", "b"}}, parseToolArguments(`["a","b"]`))
	assert.Equal(t, map[string]any{"input": "gel cleanser"}, parseToolArguments(" gel cleanser "))
	assert.Equal(t, map[string]any{"input": "{broken"}, parseToolArguments("{broken"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Looks up prices.", describe("Looks up prices.", nil))
	assert.Equal(t,
		"Looks up prices. Input should be a JSON object with keys: currency, product.",
		describe("Looks up prices. ", map[string]any{"product": map[string]any{}, "currency": map[string]any{}}),
	)
}

func TestLoad_NoAddrs(t *testing.T) {
	got, err := Load(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
