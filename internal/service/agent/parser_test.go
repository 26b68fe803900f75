package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput_Final(t *testing.T) {
	st, err := parseOutput("I know enough.\nFinal Answer:  Use a gel cleanser. \n")
	require.NoError(t, err)

	assert.True(t, st.Done)
	assert.Equal(t, "Use a gel cleanser.", st.Final)
}

func TestParseOutput_Action(t *testing.T) {
	st, err := parseOutput("Search first.\nAction: duckduckgo_search\nAction Input: \"oily skin serum\"\n")
	require.NoError(t, err)

	assert.False(t, st.Done)
	assert.Equal(t, "duckduckgo_search", st.Tool)
	assert.Equal(t, "oily skin serum", st.ToolInput)
}

func TestParseOutput_MultilineActionInput(t *testing.T) {
	st, err := parseOutput("Action: Python_REPL\nAction Input: prices = [850, 1200]\nmin(prices)")
	require.NoError(t, err)

	assert.Equal(t, "Python_REPL", st.Tool)
	assert.Equal(t, "prices = [850, 1200]\nmin(prices)", st.ToolInput)
}

func TestParseOutput_BothActionAndFinal(t *testing.T) {
	_, err := parseOutput("Action: duckduckgo_search\nAction Input: x\nFinal Answer: y")
	assert.ErrorIs(t, err, ErrOutputParse)

	var perr *parseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, invalidResponseMessage, perr.observation)
}

func TestParseOutput_MissingAction(t *testing.T) {
	_, err := parseOutput("Just chatting.")

	var perr *parseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, missingActionMessage, perr.observation)
}

func TestParseOutput_MissingActionInput(t *testing.T) {
	_, err := parseOutput("Thought: search\nAction: duckduckgo_search")

	var perr *parseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, missingActionInputMessage, perr.observation)
}

func TestNormalizeToolName(t *testing.T) {
	assert.Equal(t, "python_repl", normalizeToolName(" **Python_REPL** "))
}
