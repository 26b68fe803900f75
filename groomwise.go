// Package groomwise runs grooming-advice conversations: each turn recalls
// related past exchanges, asks the ReAct agent, and remembers the result.
package groomwise

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/w-h-a/groomwise/internal/service/session"
	memorymanager "github.com/w-h-a/groomwise/memory_manager"
)

var ErrEmptyInput = errors.New("user input is required")

// Runner answers one combined input. The agent service satisfies it.
type Runner interface {
	Run(ctx context.Context, input string) (string, error)
}

type Advisor struct {
	memory  memorymanager.MemoryManager
	runner  Runner
	session *session.Service
	options Options
	mtx     sync.Mutex
}

// Turn recalls, answers, remembers and persists. A failure before the agent
// answers returns no answer; a failure saving the exchange returns the
// answer together with the error. Turns are serialised so the persisted
// index sees one writer.
func (a *Advisor) Turn(ctx context.Context, userInput string) (string, error) {
	if len(strings.TrimSpace(userInput)) == 0 {
		return "", ErrEmptyInput
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()

	recalled, err := a.memory.Recall(ctx, userInput, a.options.RecallK)
	if err != nil {
		return "", fmt.Errorf("recall memory: %w", err)
	}

	answer, err := a.runner.Run(ctx, CombineInput(userInput, recalled))
	if err != nil {
		return "", fmt.Errorf("run agent: %w", err)
	}

	exchange := fmt.Sprintf("Human: %s\nAI: %s", userInput, answer)
	if err := a.memory.Remember(ctx, exchange, memorymanager.WithMetadata(map[string]any{"source": "turn"})); err != nil {
		return answer, fmt.Errorf("remember turn: %w", err)
	}

	if err := a.memory.Persist(ctx); err != nil {
		return answer, fmt.Errorf("persist memory: %w", err)
	}

	a.options.Logger.Debug().
		Int("recalled", len(recalled)).
		Msg("turn complete")

	return answer, nil
}

// Chat runs a turn on behalf of a chat session and records the outcome in
// its transcript.
func (a *Advisor) Chat(ctx context.Context, sessionId string, userInput string) (string, error) {
	s, err := a.session.CreateSession(ctx, sessionId)
	if err != nil {
		return "", err
	}

	answer, err := a.Turn(ctx, userInput)
	if len(answer) == 0 && err != nil {
		s.Fail(userInput, err)
		return "", err
	}

	s.Append(userInput, answer)

	return answer, err
}

// Probe returns the stored texts closest to query.
func (a *Advisor) Probe(ctx context.Context, query string, k int) ([]string, error) {
	return a.memory.Recall(ctx, query, k)
}

func (a *Advisor) CreateSession(ctx context.Context, sessionId string) (string, error) {
	s, err := a.session.CreateSession(ctx, sessionId)
	if err != nil {
		return "", err
	}
	return s.ID(), nil
}

// History returns the transcript of a session and its failed turn awaiting
// display, if any.
func (a *Advisor) History(ctx context.Context, sessionId string) ([]session.Turn, *session.Turn, error) {
	s, err := a.session.GetSession(ctx, sessionId)
	if err != nil {
		return nil, nil, err
	}
	turns, failed := s.View()
	return turns, failed, nil
}

func (a *Advisor) DeleteSession(ctx context.Context, sessionId string) {
	a.session.DeleteSession(ctx, sessionId)
}

// ExpireSessions forgets chat sessions idle for longer than ttl.
func (a *Advisor) ExpireSessions(ctx context.Context, ttl time.Duration) int {
	return a.session.Expire(ctx, ttl)
}

func (a *Advisor) Close() error {
	return a.memory.Close()
}

// CombineInput appends recalled memories to the user's message.
func CombineInput(userInput string, recalled []string) string {
	var sb bytes.Buffer

	sb.WriteString(userInput)
	sb.WriteString("\n\nRelevant past memory:\n")

	lines := make([]string, 0, len(recalled))
	for _, text := range recalled {
		lines = append(lines, "- "+text)
	}
	sb.WriteString(strings.Join(lines, "\n"))

	return sb.String()
}

func New(
	memory memorymanager.MemoryManager,
	runner Runner,
	opts ...Option,
) *Advisor {
	options := NewOptions(opts...)

	return &Advisor{
		memory:  memory,
		runner:  runner,
		session: session.New(),
		options: options,
	}
}
