package qdrant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// cosineDistance matches the similarity every other store ranks by.
const cosineDistance = "Cosine"

const (
	payloadContent   = "content"
	payloadMetadata  = "metadata"
	payloadCreatedAt = "created_at"
)

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type point struct {
	Id      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type upsertRequest struct {
	Points []point `json:"points"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithVector  bool      `json:"with_vector"`
	WithPayload bool      `json:"with_payload"`
}

type envelope[T any] struct {
	Status status `json:"status"`
	Result T      `json:"result"`
}

// status is either a plain string ("ok") or an object carrying an error.
type status struct {
	State string
	Error string
}

func (s *status) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}

	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if len(obj.Error) > 0 {
		s.State = "error"
		s.Error = obj.Error
	}
	return nil
}

func (s status) ok() bool {
	return s.State == "ok"
}

type scoredPoint struct {
	Id      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
	Vector  []float32      `json:"vector"`
}

type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("qdrant http %d: %s", e.status, e.body)
}
