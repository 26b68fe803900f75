package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	toolprovider "github.com/w-h-a/groomwise/tool_provider"
)

type scriptedGenerator struct {
	replies []string
	prompts []string
	err     error
	mtx     sync.Mutex
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	g.prompts = append(g.prompts, prompt)

	if g.err != nil {
		return "", g.err
	}

	if len(g.replies) == 0 {
		return "Thought: still thinking", nil
	}

	reply := g.replies[0]
	g.replies = g.replies[1:]

	return reply, nil
}

type recordingTool struct {
	name   string
	result string
	err    error
	inputs []string
}

func (r *recordingTool) Name() string { return r.name }

func (r *recordingTool) Description() string { return "test tool " + r.name }

func (r *recordingTool) Run(_ context.Context, input string) (string, error) {
	r.inputs = append(r.inputs, input)
	return r.result, r.err
}

func newService(gen *scriptedGenerator, tools ...toolprovider.ToolProvider) *Service {
	return New(gen, tools)
}

func TestRun_FinalAnswerWithoutTools(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"The user only gave a skin type.\nFinal Answer: Could you tell me your concern and budget?",
	}}

	got, err := newService(gen).Run(context.Background(), "I have oily skin.")
	require.NoError(t, err)

	assert.Equal(t, "Could you tell me your concern and budget?", got)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Question: I have oily skin.")
}

func TestRun_ToolThenFinalAnswer(t *testing.T) {
	search := &recordingTool{name: "duckduckgo_search", result: "Gel cleanser Rs. 850"}
	python := &recordingTool{name: "Python_REPL", result: "True"}

	gen := &scriptedGenerator{replies: []string{
		"I have all needed info.\nAction: duckduckgo_search\nAction Input: \"face wash under 1000 PKR\"",
		"Check the budget.\nAction: **python_repl**\nAction Input: 850 < 1000",
		"It fits.\nFinal Answer: Gel cleanser at Rs. 850.",
	}}

	got, err := newService(gen, search, python).Run(context.Background(), "oily skin, acne, 1000 PKR")
	require.NoError(t, err)

	assert.Equal(t, "Gel cleanser at Rs. 850.", got)
	assert.Equal(t, []string{"face wash under 1000 PKR"}, search.inputs)
	assert.Equal(t, []string{"850 < 1000"}, python.inputs)

	require.Len(t, gen.prompts, 3)
	assert.True(t, strings.HasSuffix(gen.prompts[1],
		"I have all needed info.\nAction: duckduckgo_search\nAction Input: \"face wash under 1000 PKR\"\nObservation: Gel cleanser Rs. 850\nThought: "))
	assert.True(t, strings.HasSuffix(gen.prompts[2], "\nObservation: True\nThought: "))
}

func TestRun_UnknownTool(t *testing.T) {
	search := &recordingTool{name: "duckduckgo_search"}

	gen := &scriptedGenerator{replies: []string{
		"Action: Google\nAction Input: cleanser",
		"Final Answer: done",
	}}

	got, err := newService(gen, search).Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, "done", got)
	assert.Contains(t, gen.prompts[1], "Observation: Google is not a valid tool, try one of [duckduckgo_search].")
	assert.Empty(t, search.inputs)
}

func TestRun_ToolErrorBecomesObservation(t *testing.T) {
	python := &recordingTool{name: "Python_REPL", err: errors.New("timed out")}

	gen := &scriptedGenerator{replies: []string{
		"Action: Python_REPL\nAction Input: 1 < 2",
		"Final Answer: ok",
	}}

	got, err := newService(gen, python).Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, "ok", got)
	assert.Contains(t, gen.prompts[1], "Observation: Tool error: timed out\nThought: ")
}

func TestRun_ParseErrorIsFedBack(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		"I think a gel cleanser is best.",
		"Final Answer: A gel cleanser.",
	}}

	got, err := newService(gen).Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, "A gel cleanser.", got)
	assert.Contains(t, gen.prompts[1], "I think a gel cleanser is best.\nObservation: "+missingActionMessage+"\nThought: ")
}

func TestRun_ParseErrorWithoutHandling(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"no format at all"}}

	_, err := New(gen, nil, WithHandleParsingErrors(false)).Run(context.Background(), "q")
	assert.ErrorIs(t, err, ErrOutputParse)
}

func TestRun_IterationLimit(t *testing.T) {
	search := &recordingTool{name: "duckduckgo_search", result: "nothing"}

	var replies []string
	for i := 0; i < 5; i++ {
		replies = append(replies, "Action: duckduckgo_search\nAction Input: again")
	}
	gen := &scriptedGenerator{replies: replies}

	got, err := New(gen, []toolprovider.ToolProvider{search}, WithMaxIterations(3)).Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, StoppedMessage, got)
	assert.Len(t, gen.prompts, 3)
	assert.Len(t, search.inputs, 3)
}

func TestRun_GeneratorError(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("rate limited")}

	_, err := newService(gen).Run(context.Background(), "q")
	assert.ErrorContains(t, err, "rate limited")
}

func TestRun_TruncatesInventedObservation(t *testing.T) {
	search := &recordingTool{name: "duckduckgo_search", result: "real"}

	gen := &scriptedGenerator{replies: []string{
		"Action: duckduckgo_search\nAction Input: serum\nObservation: invented\nFinal Answer: too early",
		"Final Answer: real answer",
	}}

	got, err := newService(gen, search).Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, "real answer", got)
	assert.Equal(t, []string{"serum"}, search.inputs)
}

func TestNew_SkipsDuplicateTools(t *testing.T) {
	a := &recordingTool{name: "Python_REPL"}
	b := &recordingTool{name: "python_repl"}

	s := New(&scriptedGenerator{}, []toolprovider.ToolProvider{a, nil, b})

	assert.Equal(t, []string{"Python_REPL"}, s.catalog.Names())
	assert.Contains(t, s.Template().String(), "Action: One of [Python_REPL]")
}
