package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer"
)

func init() {
	sqlite_vec.Auto()
}

type sqliteStorer struct {
	options storer.Options
	db      *sql.DB
}

func (s *sqliteStorer) Store(ctx context.Context, content string, metadata map[string]any, vector []float32) error {
	if err := storer.CheckDimension(vector, s.options.VectorSize); err != nil {
		return err
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	vecJSON, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO memories (content, metadata, created_at) VALUES (?, ?, ?)`,
		content,
		string(metaJSON),
		time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO memory_vectors (rowid, embedding) VALUES (?, ?)`,
		id,
		string(vecJSON),
	); err != nil {
		return fmt.Errorf("insert embedding: %w", err)
	}

	return tx.Commit()
}

func (s *sqliteStorer) Search(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	if err := storer.CheckDimension(vector, s.options.VectorSize); err != nil {
		return nil, err
	}

	vecJSON, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}

	query := `
		SELECT
			m.id,
			m.content,
			m.metadata,
			m.created_at,
			vec_to_json(v.embedding),
			vec_distance_cosine(v.embedding, ?) AS distance
		FROM memory_vectors v
		JOIN memories m ON m.id = v.rowid
		ORDER BY distance ASC, m.id ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, string(vecJSON), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []storer.Record

	for rows.Next() {
		var id int64
		var createdAt int64
		var metaJSON, embJSON string
		var distance float64
		var rec storer.Record

		if err := rows.Scan(&id, &rec.Content, &metaJSON, &createdAt, &embJSON, &distance); err != nil {
			return nil, err
		}

		rec.Id = strconv.FormatInt(id, 10)
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		rec.UpdatedAt = rec.CreatedAt
		// cosine distance is in [0, 2]
		rec.Score = float32(1 - distance)

		if err := json.Unmarshal([]byte(metaJSON), &rec.Metadata); err != nil {
			rec.Metadata = make(map[string]any)
		}

		if err := json.Unmarshal([]byte(embJSON), &rec.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Flush is a no-op: every Store commits its own transaction.
func (s *sqliteStorer) Flush(ctx context.Context) error {
	return nil
}

func (s *sqliteStorer) Close() error {
	return s.db.Close()
}

func (s *sqliteStorer) initSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS memories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT NOT NULL,
			metadata TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS memory_vectors USING vec0(
			embedding float[%d] distance_metric=cosine
		);
	`, s.options.VectorSize)

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// NewStorer opens (or creates) the database file at the configured location.
func NewStorer(opts ...storer.Option) (storer.Storer, error) {
	options := storer.NewOptions(opts...)

	if len(options.Location) == 0 || options.VectorSize == 0 {
		return nil, errors.New("missing location or vector size for sqlite storer")
	}

	if err := os.MkdirAll(filepath.Dir(options.Location), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", options.Location)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// one connection keeps writes from tripping over SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &sqliteStorer{
		options: options,
		db:      db,
	}

	if err := s.initSchema(options.Context); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}
