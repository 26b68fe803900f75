package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/w-h-a/groomwise"
	"github.com/w-h-a/groomwise/internal/config"
	"github.com/w-h-a/groomwise/internal/console"
	"github.com/w-h-a/groomwise/internal/logger"
	"github.com/w-h-a/groomwise/server"
	httpserver "github.com/w-h-a/groomwise/server/http"
)

type cli struct {
	config.Config `embed:""`

	Chat chatCmd `cmd:"" default:"withargs" help:"Talk to GroomWise in the terminal."`
	Web  webCmd  `cmd:"" help:"Serve the GroomWise chat page."`
}

type chatCmd struct {
	ContinueOnError bool   `name:"continue-on-error" help:"Keep the conversation going after a failed turn" env:"GROOMWISE_CONTINUE_ON_ERROR"`
	DebugQuery      string `name:"debug-query" help:"Print the top memory matches for this query after every turn" env:"GROOMWISE_DEBUG_QUERY"`
}

type webCmd struct {
	Addr            string        `help:"Address to listen on" default:":8501" env:"GROOMWISE_ADDR"`
	SessionTTL      time.Duration `name:"session-ttl" help:"Forget chat sessions idle this long, 0 keeps them" default:"24h" env:"GROOMWISE_SESSION_TTL"`
	ShutdownTimeout time.Duration `name:"shutdown-timeout" help:"Time allowed for in-flight requests on shutdown" default:"10s" env:"GROOMWISE_SHUTDOWN_TIMEOUT"`
}

// exitCode carries kong's requested exit status out of a panic so --help
// does not end the process from inside run.
type exitCode int

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) (code int) {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	var c cli

	parser, err := kong.New(
		&c,
		kong.Name("groomwise"),
		kong.Description("GroomWise, a personal grooming advisor."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(status int) { panic(exitCode(status)) }),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			status, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(status)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := c.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingCredential) {
			fmt.Fprintln(stderr, config.MissingCredentialMsg)
		} else {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}

	log := logger.New(logger.Config{
		Level:   c.LogLevel,
		Pretty:  c.LogPretty,
		Out:     stderr,
		Secrets: []string{c.ApiKey, c.EmbedderKey, c.StoreKey},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	advisor, err := newAdvisor(ctx, &c.Config, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		return 1
	}
	defer advisor.Close()

	log.Info().
		Str("provider", c.Provider).
		Str("model", c.Model).
		Str("store", c.Store).
		Str("embedder", c.Embedder).
		Msg("groomwise ready")

	switch kctx.Command() {
	case "web":
		srv := httpserver.NewServer(
			server.WithName("groomwise-web"),
			server.WithAddress(c.Web.Addr),
			server.WithShutdownTimeout(c.Web.ShutdownTimeout),
			httpserver.WithLogger(log),
		)

		if err := srv.Handle(httpserver.NewChatHandler(advisor)); err != nil {
			log.Error().Err(err).Msg("failed to register handler")
			return 1
		}

		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("failed to start web server")
			return 1
		}

		fmt.Fprintf(stdout, "GroomWise is listening on http://%s\n", srv.Addr())

		if c.Web.SessionTTL > 0 {
			go sweepSessions(ctx, advisor, c.Web.SessionTTL, log)
		}

		<-ctx.Done()

		if err := srv.Stop(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to stop web server")
			return 1
		}

		return 0

	default:
		opts := []console.Option{
			console.WithContinueOnError(c.Chat.ContinueOnError),
			console.WithLogger(log),
		}
		if len(c.Chat.DebugQuery) > 0 {
			opts = append(opts, console.WithProbe(c.Chat.DebugQuery, c.RecallK))
		}

		if err := console.New(advisor, opts...).Run(ctx, stdin, stdout); err != nil {
			return 1
		}

		return 0
	}
}

func sweepSessions(ctx context.Context, advisor *groomwise.Advisor, ttl time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := advisor.ExpireSessions(ctx, ttl); n > 0 {
				log.Debug().Int("sessions", n).Msg("expired idle chat sessions")
			}
		}
	}
}
