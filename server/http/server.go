package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/w-h-a/groomwise/server"
)

type httpServer struct {
	options  server.Options
	logger   zerolog.Logger
	handler  http.Handler
	srv      *http.Server
	listener net.Listener
	mtx      sync.RWMutex
}

func (s *httpServer) Options() server.Options {
	return s.options
}

// Handle wraps handler in access logging and any configured middleware.
func (s *httpServer) Handle(handler http.Handler) error {
	if handler == nil {
		return errors.New("handler is nil")
	}

	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	handler = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(handler)

	handler = hlog.NewHandler(s.logger)(handler)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.handler = handler

	return nil
}

// Start listens on the configured address and serves in the background.
func (s *httpServer) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.handler == nil {
		return errors.New("no handler registered")
	}

	if s.srv != nil {
		return errors.New("server already started")
	}

	listener, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.options.Address, err)
	}

	s.listener = listener
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("http server started")

	return nil
}

// Stop waits up to the shutdown timeout for in-flight requests.
func (s *httpServer) Stop(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.options.ShutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	s.srv = nil
	s.listener = nil

	return err
}

// Addr is the bound address once started, useful with port 0.
func (s *httpServer) Addr() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.listener == nil {
		return s.options.Address
	}
	return s.listener.Addr().String()
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	logger := zerolog.Nop()
	if l, ok := LoggerFrom(options.Context); ok {
		logger = l.With().Str("server", options.Name).Logger()
	}

	return &httpServer{
		options: options,
		logger:  logger,
	}
}
