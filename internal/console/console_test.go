package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdvisor struct {
	block   bool
	answers []string
	errs    []error
	inputs  []string
	probes  []string
	matches []string
}

func (f *fakeAdvisor) Turn(ctx context.Context, input string) (string, error) {
	i := len(f.inputs)
	f.inputs = append(f.inputs, input)

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	if i < len(f.errs) && f.errs[i] != nil {
		answer := ""
		if i < len(f.answers) {
			answer = f.answers[i]
		}
		return answer, f.errs[i]
	}
	if i < len(f.answers) {
		return f.answers[i], nil
	}
	return "ok", nil
}

func (f *fakeAdvisor) Probe(_ context.Context, query string, _ int) ([]string, error) {
	f.probes = append(f.probes, query)
	return f.matches, nil
}

func TestRun_ExitWithoutTurn(t *testing.T) {
	adv := &fakeAdvisor{}
	var out bytes.Buffer

	err := New(adv).Run(context.Background(), strings.NewReader("  EXIT \n"), &out)
	require.NoError(t, err)

	assert.Empty(t, adv.inputs)
	assert.Equal(t, Banner+"\n"+Hint+"\n"+Prompt+Farewell+"\n", out.String())
}

func TestRun_Conversation(t *testing.T) {
	adv := &fakeAdvisor{answers: []string{"What is your budget?", "Try a gel cleanser."}}
	var out bytes.Buffer

	in := strings.NewReader("I have oily skin\n\n1000 PKR\nexit\n")

	require.NoError(t, New(adv).Run(context.Background(), in, &out))

	assert.Equal(t, []string{"I have oily skin", "1000 PKR"}, adv.inputs)
	assert.Contains(t, out.String(), "GroomWise: What is your budget?\n")
	assert.Contains(t, out.String(), "GroomWise: Try a gel cleanser.\n")
	assert.True(t, strings.HasSuffix(out.String(), Farewell+"\n"))
}

func TestRun_EOFEndsLoop(t *testing.T) {
	adv := &fakeAdvisor{}
	var out bytes.Buffer

	require.NoError(t, New(adv).Run(context.Background(), strings.NewReader("hello"), &out))

	assert.Equal(t, []string{"hello"}, adv.inputs)
	assert.True(t, strings.HasSuffix(out.String(), Farewell+"\n"))
}

func TestRun_ErrorEndsLoop(t *testing.T) {
	boom := errors.New("groq unavailable")
	adv := &fakeAdvisor{errs: []error{boom}}
	var out bytes.Buffer

	err := New(adv).Run(context.Background(), strings.NewReader("hi\nsecond\n"), &out)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"hi"}, adv.inputs)
	assert.Contains(t, out.String(), "An error occurred: groq unavailable\n")
	assert.NotContains(t, out.String(), Farewell)
}

func TestRun_ContinueOnError(t *testing.T) {
	adv := &fakeAdvisor{errs: []error{errors.New("timeout")}, answers: []string{"", "fine"}}
	var out bytes.Buffer

	err := New(adv, WithContinueOnError(true)).Run(context.Background(), strings.NewReader("hi\nagain\nexit\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"hi", "again"}, adv.inputs)
	assert.Contains(t, out.String(), "An error occurred: timeout\n")
	assert.Contains(t, out.String(), "GroomWise: fine\n")
}

func TestRun_Probe(t *testing.T) {
	adv := &fakeAdvisor{matches: []string{"Human: I have oily skin\nAI: noted"}}
	var out bytes.Buffer

	err := New(adv, WithProbe("oily skin", 3)).Run(context.Background(), strings.NewReader("hi\nexit\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"oily skin"}, adv.probes)
	assert.Contains(t, out.String(), "\nMemory (Top 3 matches for 'oily skin'):\n1. Human: I have oily skin\nAI: noted\n")
}

// syncBuffer lets the test read output while Run writes from another goroutine.
type syncBuffer struct {
	mtx sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.buf.String()
}

func TestRun_CancelAtPrompt(t *testing.T) {
	adv := &fakeAdvisor{}
	out := &syncBuffer{}

	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- New(adv).Run(ctx, in, out)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), Prompt)
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.Empty(t, adv.inputs)
	assert.True(t, strings.HasSuffix(out.String(), Prompt+"\n"+Farewell+"\n"))
}

func TestRun_CancelDuringTurn(t *testing.T) {
	adv := &fakeAdvisor{block: true}
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := New(adv).Run(ctx, strings.NewReader("I have oily skin\nsecond\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"I have oily skin"}, adv.inputs)
	assert.NotContains(t, out.String(), "An error occurred")
	assert.True(t, strings.HasSuffix(out.String(), Farewell+"\n"))
}

func TestRun_AnswerShownWhenSavingFails(t *testing.T) {
	adv := &fakeAdvisor{
		answers: []string{"Try a gel cleanser."},
		errs:    []error{errors.New("persist memory: disk full")},
	}
	var out bytes.Buffer

	err := New(adv).Run(context.Background(), strings.NewReader("oily skin\n"), &out)
	assert.Error(t, err)

	got := out.String()
	assert.Contains(t, got, "GroomWise: Try a gel cleanser.\n")
	assert.Contains(t, got, "An error occurred: persist memory: disk full\n")
	assert.Less(t, strings.Index(got, "GroomWise: Try"), strings.Index(got, "An error occurred"))
}
