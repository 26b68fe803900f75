package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer"
)

// IndexFile is the name of the snapshot written inside the location directory.
const IndexFile = "index.json"

type snapshot struct {
	Dimension int             `json:"dimension"`
	Records   []storer.Record `json:"records"`
}

type memoryStorer struct {
	options   storer.Options
	records   []storer.Record
	dimension int
	mtx       sync.RWMutex
}

func (s *memoryStorer) Store(ctx context.Context, content string, metadata map[string]any, vector []float32) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", storer.ErrDimensionMismatch)
	}

	if err := storer.CheckDimension(vector, s.dimension); err != nil {
		return err
	}

	if s.dimension == 0 {
		s.dimension = len(vector)
	}

	now := time.Now().UTC()

	cpy := make([]float32, len(vector))
	copy(cpy, vector)

	rec := storer.Record{
		Id:        uuid.New().String(),
		Content:   content,
		Metadata:  metadata,
		Embedding: cpy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.records = append(s.records, rec)

	return nil
}

func (s *memoryStorer) Search(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if err := storer.CheckDimension(vector, s.dimension); err != nil {
		return nil, err
	}

	candidates := make([]storer.Record, 0, len(s.records))

	for _, rec := range s.records {
		score := storer.CosineSimilarity(vector, rec.Embedding)
		rec.Score = float32(score)
		candidates = append(candidates, rec)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// Flush overwrites the snapshot with the whole index. The write is neither
// atomic nor locked against other processes using the same directory.
func (s *memoryStorer) Flush(ctx context.Context) error {
	if len(s.options.Location) == 0 {
		return nil
	}

	s.mtx.RLock()
	data, err := json.Marshal(snapshot{
		Dimension: s.dimension,
		Records:   s.records,
	})
	s.mtx.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	if err := os.MkdirAll(s.options.Location, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.options.Location, IndexFile), data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	return nil
}

func (s *memoryStorer) Close() error {
	return nil
}

func (s *memoryStorer) load() error {
	data, err := os.ReadFile(filepath.Join(s.options.Location, IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}

	if s.dimension > 0 && snap.Dimension > 0 && snap.Dimension != s.dimension {
		return fmt.Errorf("%w: index has %d, want %d", storer.ErrDimensionMismatch, snap.Dimension, s.dimension)
	}

	if s.dimension == 0 {
		s.dimension = snap.Dimension
	}

	for _, rec := range snap.Records {
		if err := storer.CheckDimension(rec.Embedding, s.dimension); err != nil {
			return fmt.Errorf("record %s: %w", rec.Id, err)
		}
	}

	s.records = snap.Records

	return nil
}

// NewStorer returns an in-process index. With a location it loads the
// snapshot found there and Flush writes it back.
func NewStorer(opts ...storer.Option) (storer.Storer, error) {
	options := storer.NewOptions(opts...)

	s := &memoryStorer{
		options:   options,
		records:   []storer.Record{},
		dimension: options.VectorSize,
		mtx:       sync.RWMutex{},
	}

	if len(options.Location) > 0 {
		if err := s.load(); err != nil {
			return nil, err
		}
	}

	return s, nil
}
