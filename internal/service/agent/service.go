package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/w-h-a/groomwise/generator"
	"github.com/w-h-a/groomwise/prompt"
	toolprovider "github.com/w-h-a/groomwise/tool_provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	StoppedMessage = "Agent stopped due to iteration limit or time limit."
	tracerName     = "github.com/w-h-a/groomwise/internal/service/agent"
)

// StopSequences must be configured on the generator so a reply ends before
// the model invents its own observation.
var StopSequences = []string{"\nObservation:", "\n\tObservation:"}

type Service struct {
	generator generator.Generator
	catalog   *Catalog
	template  *prompt.Template
	options   Options
	tracer    trace.Tracer
}

func (s *Service) Template() *prompt.Template {
	return s.template
}

// Run drives the Thought/Action/Observation loop until the model gives a
// final answer or the iteration cap is reached.
func (s *Service) Run(ctx context.Context, input string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "agent.Run", trace.WithAttributes(
		attribute.Int("agent.max_iterations", s.options.MaxIterations),
	))
	defer span.End()

	var scratchpad bytes.Buffer

	for i := 0; i < s.options.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return "", fail(span, err)
		}

		text, err := s.generate(ctx, i, s.template.Render(input, scratchpad.String()))
		if err != nil {
			return "", fail(span, fmt.Errorf("generate: %w", err))
		}

		st, err := parseOutput(text)
		if err != nil {
			var perr *parseError
			if !s.options.HandleParsingErrors || !errors.As(err, &perr) {
				return "", fail(span, fmt.Errorf("%w: %q", ErrOutputParse, text))
			}

			s.logStep(i).
				Str("output", text).
				Str("observation", perr.observation).
				Msg("model output not parseable")

			appendStep(&scratchpad, text, perr.observation)
			continue
		}

		if st.Done {
			s.logStep(i).Str("final_answer", st.Final).Msg("agent finished")
			span.SetAttributes(attribute.Int("agent.iterations", i+1))
			return st.Final, nil
		}

		observation := s.runTool(ctx, st.Tool, st.ToolInput)

		s.logStep(i).
			Str("thought", text).
			Str("action", st.Tool).
			Str("action_input", st.ToolInput).
			Str("observation", observation).
			Msg("agent step")

		appendStep(&scratchpad, text, observation)
	}

	span.SetAttributes(attribute.Bool("agent.stopped", true))
	s.options.Logger.Warn().Int("max_iterations", s.options.MaxIterations).Msg("agent hit iteration limit")

	return StoppedMessage, nil
}

func (s *Service) generate(ctx context.Context, iteration int, p string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "generator.Generate", trace.WithAttributes(
		attribute.Int("agent.iteration", iteration),
		attribute.Int("prompt.length", len(p)),
	))
	defer span.End()

	text, err := s.generator.Generate(ctx, p)
	if err != nil {
		return "", fail(span, err)
	}

	// some providers ignore stop sequences
	for _, stop := range StopSequences {
		if idx := strings.Index(text, stop); idx >= 0 {
			text = text[:idx]
		}
	}

	return text, nil
}

func (s *Service) runTool(ctx context.Context, name string, input string) string {
	tp, ok := s.catalog.Get(name)
	if !ok {
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", name, strings.Join(s.catalog.Names(), ", "))
	}

	ctx, span := s.tracer.Start(ctx, "tool.Run", trace.WithAttributes(
		attribute.String("tool.name", tp.Name()),
	))
	defer span.End()

	result, err := tp.Run(ctx, input)
	if err != nil {
		fail(span, err)
		return fmt.Sprintf("Tool error: %v", err)
	}

	return result
}

func (s *Service) logStep(iteration int) *zerolog.Event {
	var event *zerolog.Event
	if s.options.Verbose {
		event = s.options.Logger.Info()
	} else {
		event = s.options.Logger.Debug()
	}
	return event.Int("iteration", iteration)
}

func appendStep(scratchpad *bytes.Buffer, text string, observation string) {
	scratchpad.WriteString(text)
	scratchpad.WriteString("\nObservation: ")
	scratchpad.WriteString(observation)
	scratchpad.WriteString("\nThought: ")
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func New(
	generator generator.Generator,
	tools []toolprovider.ToolProvider,
	opts ...Option,
) *Service {
	options := NewOptions(opts...)

	catalog := NewCatalog()

	for _, tp := range tools {
		if tp == nil {
			continue
		}
		if err := catalog.Register(tp); err != nil {
			options.Logger.Warn().Err(err).Msg("skipping tool")
			continue
		}
	}

	if options.MaxIterations <= 0 {
		options.MaxIterations = 15
	}

	return &Service{
		generator: generator,
		catalog:   catalog,
		template:  prompt.New(catalog.List(), options.PromptOptions...),
		options:   options,
		tracer:    otel.Tracer(tracerName),
	}
}
