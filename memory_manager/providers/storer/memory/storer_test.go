package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer"
)

func contents(records []storer.Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Content)
	}
	return out
}

func TestSearch_OrdersBySimilarity(t *testing.T) {
	s, err := NewStorer()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "x", nil, []float32{1, 0, 0}))
	require.NoError(t, s.Store(ctx, "xy", nil, []float32{1, 1, 0}))
	require.NoError(t, s.Store(ctx, "z", nil, []float32{0, 0, 1}))

	got, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "xy"}, contents(got))
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	s, err := NewStorer()
	require.NoError(t, err)
	ctx := context.Background()

	for _, c := range []string{"first", "second", "third"} {
		require.NoError(t, s.Store(ctx, c, nil, []float32{0, 1}))
	}

	got, err := s.Search(ctx, []float32{0, 1}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, contents(got))
}

func TestSearch_LimitBelowOne(t *testing.T) {
	s, err := NewStorer()
	require.NoError(t, err)

	require.NoError(t, s.Store(context.Background(), "a", nil, []float32{1}))

	got, err := s.Search(context.Background(), []float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_RejectsDimensionMismatch(t *testing.T) {
	s, err := NewStorer(storer.WithVectorSize(3))
	require.NoError(t, err)

	err = s.Store(context.Background(), "a", nil, []float32{1, 2})
	assert.ErrorIs(t, err, storer.ErrDimensionMismatch)

	err = s.Store(context.Background(), "b", nil, nil)
	assert.ErrorIs(t, err, storer.ErrDimensionMismatch)
}

func TestStore_InfersDimensionFromFirstRecord(t *testing.T) {
	s, err := NewStorer()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "a", nil, []float32{1, 2}))

	err = s.Store(ctx, "b", nil, []float32{1, 2, 3})
	assert.ErrorIs(t, err, storer.ErrDimensionMismatch)
}

func TestFlush_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "memory_index")
	ctx := context.Background()

	s, err := NewStorer(storer.WithLocation(dir), storer.WithVectorSize(2))
	require.NoError(t, err)

	require.NoError(t, s.Store(ctx, "oily skin", map[string]any{"source": "turn"}, []float32{1, 0}))
	require.NoError(t, s.Store(ctx, "dry hair", nil, []float32{0, 1}))
	require.NoError(t, s.Flush(ctx))

	_, err = os.Stat(filepath.Join(dir, IndexFile))
	require.NoError(t, err)

	reloaded, err := NewStorer(storer.WithLocation(dir), storer.WithVectorSize(2))
	require.NoError(t, err)

	got, err := reloaded.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"oily skin", "dry hair"}, contents(got))
	assert.Equal(t, "turn", got[0].Metadata["source"])
}

func TestFlush_OverwritesPriorContents(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStorer(storer.WithLocation(dir))
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, "one", nil, []float32{1}))
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Store(ctx, "two", nil, []float32{1}))
	require.NoError(t, s.Flush(ctx))

	reloaded, err := NewStorer(storer.WithLocation(dir))
	require.NoError(t, err)

	got, err := reloaded.Search(ctx, []float32{1}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, contents(got))
}

func TestFlush_WithoutLocationIsNoop(t *testing.T) {
	s, err := NewStorer()
	require.NoError(t, err)

	assert.NoError(t, s.Flush(context.Background()))
}

func TestNewStorer_RejectsIndexWithOtherDimension(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStorer(storer.WithLocation(dir))
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, "a", nil, []float32{1, 0, 0}))
	require.NoError(t, s.Flush(ctx))

	_, err = NewStorer(storer.WithLocation(dir), storer.WithVectorSize(4))
	assert.ErrorIs(t, err, storer.ErrDimensionMismatch)
}

func TestNewStorer_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("{not json"), 0o644))

	_, err := NewStorer(storer.WithLocation(dir))
	assert.Error(t, err)
}
