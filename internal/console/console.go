// Package console runs the line-oriented GroomWise conversation.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	Banner   = "GroomWise Agent (Tool-Enforced ReAct Mode) Ready!"
	Hint     = "   (Type 'exit' to end the conversation)"
	Prompt   = "You: "
	Farewell = "GroomWise: Farewell, radiant one."
)

type Advisor interface {
	Turn(ctx context.Context, userInput string) (string, error)
	Probe(ctx context.Context, query string, k int) ([]string, error)
}

type Console struct {
	advisor Advisor
	options Options
}

type readResult struct {
	line string
	err  error
}

// readLines feeds lines from in until an error or until ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan readResult {
	lines := make(chan readResult)

	go func() {
		defer close(lines)

		reader := bufio.NewReader(in)

		for {
			line, err := reader.ReadString('\n')

			select {
			case lines <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}

			if err != nil {
				return
			}
		}
	}()

	return lines
}

// Run reads lines from in until "exit", end of input or cancellation of
// ctx. A failed turn is reported and, unless ContinueOnError is set, ends
// the loop with its error.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, Banner)
	fmt.Fprintln(out, Hint)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := readLines(ctx, in)

	for {
		fmt.Fprint(out, Prompt)

		var res readResult
		select {
		case <-ctx.Done():
			c.farewell(out, true)
			return nil
		case res = <-lines:
		}

		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return fmt.Errorf("read input: %w", res.err)
		}
		eof := errors.Is(res.err, io.EOF)

		input := strings.TrimSpace(res.line)

		if strings.EqualFold(input, "exit") || (eof && len(input) == 0) {
			c.farewell(out, eof && len(input) == 0)
			return nil
		}

		if len(input) == 0 {
			continue
		}

		answer, err := c.advisor.Turn(ctx, input)
		if len(answer) > 0 {
			fmt.Fprintf(out, "GroomWise: %s\n", answer)
		}

		switch {
		case err != nil && ctx.Err() != nil:
			c.options.Logger.Debug().Err(err).Msg("turn interrupted")
			c.farewell(out, true)
			return nil
		case err != nil:
			fmt.Fprintf(out, "An error occurred: %v\n", err)
			c.options.Logger.Error().Err(err).Msg("turn failed")
			if !c.options.ContinueOnError {
				return err
			}
		default:
			c.probe(ctx, out)
		}

		if eof {
			c.farewell(out, false)
			return nil
		}
	}
}

func (c *Console) farewell(out io.Writer, newline bool) {
	if newline {
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, Farewell)
}

func (c *Console) probe(ctx context.Context, out io.Writer) {
	if len(c.options.ProbeQuery) == 0 {
		return
	}

	matches, err := c.advisor.Probe(ctx, c.options.ProbeQuery, c.options.ProbeK)
	if err != nil {
		c.options.Logger.Warn().Err(err).Msg("memory probe failed")
		return
	}

	fmt.Fprintf(out, "\nMemory (Top %d matches for '%s'):\n", c.options.ProbeK, c.options.ProbeQuery)
	for i, text := range matches {
		fmt.Fprintf(out, "%d. %s\n", i+1, text)
	}
}

func New(advisor Advisor, opts ...Option) *Console {
	return &Console{
		advisor: advisor,
		options: NewOptions(opts...),
	}
}
