package server

import (
	"context"
	"net/http"
)

type Server interface {
	Options() Options
	Handle(handler http.Handler) error
	Start() error
	Stop(ctx context.Context) error
	Addr() string
}
