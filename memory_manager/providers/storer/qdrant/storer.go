package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/groomwise/memory_manager/providers/storer"
	getsafe "github.com/w-h-a/groomwise/util/get_safe"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type qdrantStorer struct {
	options storer.Options
	client  *http.Client
}

func (s *qdrantStorer) Store(ctx context.Context, content string, metadata map[string]any, vector []float32) error {
	if err := storer.CheckDimension(vector, s.options.VectorSize); err != nil {
		return err
	}

	req := upsertRequest{
		Points: []point{
			{
				Id:     uuid.New().String(),
				Vector: vector,
				Payload: map[string]any{
					payloadContent:   content,
					payloadMetadata:  metadata,
					payloadCreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
				},
			},
		},
	}

	var rsp envelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPut, s.collectionPath("points?wait=true"), req, &rsp); err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}

	if !rsp.Status.ok() && len(rsp.Status.Error) > 0 {
		return fmt.Errorf("qdrant upsert: %s", rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStorer) Search(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	if err := storer.CheckDimension(vector, s.options.VectorSize); err != nil {
		return nil, err
	}

	req := searchRequest{
		Vector:      vector,
		Limit:       limit,
		WithVector:  true,
		WithPayload: true,
	}

	var rsp envelope[[]scoredPoint]

	if err := s.do(ctx, http.MethodPost, s.collectionPath("points/search"), req, &rsp); err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := make([]storer.Record, 0, len(rsp.Result))

	for _, p := range rsp.Result {
		createdAt := getsafe.Time(p.Payload, payloadCreatedAt)

		results = append(results, storer.Record{
			Id:        p.Id,
			Content:   getsafe.String(p.Payload, payloadContent),
			Metadata:  getsafe.Metadata(p.Payload, payloadMetadata),
			Embedding: p.Vector,
			Score:     float32(p.Score),
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		})
	}

	return results, nil
}

func (s *qdrantStorer) Flush(ctx context.Context) error {
	return nil
}

func (s *qdrantStorer) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *qdrantStorer) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := s.options.Location + path
	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("api-key", s.options.ApiKey)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return &httpError{status: response.StatusCode, body: string(payload)}
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func (s *qdrantStorer) configure(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return s.createCollection(ctx)
}

func (s *qdrantStorer) collectionPath(suffix string) string {
	path := "/collections/" + url.PathEscape(s.options.Collection)
	if len(suffix) > 0 {
		path += "/" + suffix
	}
	return path
}

func (s *qdrantStorer) collectionExists(ctx context.Context) (bool, error) {
	var rsp envelope[json.RawMessage]

	err := s.do(ctx, http.MethodGet, s.collectionPath(""), nil, &rsp)
	if err != nil {
		var he *httpError
		if errors.As(err, &he) && he.status == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}

	return rsp.Status.ok(), nil
}

func (s *qdrantStorer) createCollection(ctx context.Context) error {
	req := createCollectionRequest{
		Vectors: vectorParams{
			Size:     s.options.VectorSize,
			Distance: cosineDistance,
		},
	}

	var rsp envelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPut, s.collectionPath(""), req, &rsp); err != nil {
		return err
	}

	if !rsp.Status.ok() {
		return fmt.Errorf("create collection: %s", rsp.Status.Error)
	}

	return nil
}

func NewStorer(opts ...storer.Option) (storer.Storer, error) {
	options := storer.NewOptions(opts...)

	if len(options.Location) == 0 ||
		len(options.Collection) == 0 ||
		options.VectorSize == 0 {
		return nil, errors.New("missing location, collection, or vector size for qdrant storer")
	}

	client := &http.Client{
		Timeout:   15 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	s := &qdrantStorer{
		options: options,
		client:  client,
	}

	if err := s.configure(options.Context); err != nil {
		return nil, fmt.Errorf("configure qdrant storer: %w", err)
	}

	return s, nil
}
