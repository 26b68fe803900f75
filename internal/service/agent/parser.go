package agent

import (
	"errors"
	"regexp"
	"strings"
)

const (
	finalAnswerAction = "Final Answer:"

	missingActionMessage      = "Invalid Format: Missing 'Action:' after 'Thought:'"
	missingActionInputMessage = "Invalid Format: Missing 'Action Input:' after 'Action:'"
	invalidResponseMessage    = "Invalid or incomplete response"
)

var ErrOutputParse = errors.New("could not parse model output")

var (
	actionPattern      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionOnlyPattern  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputPattern = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
)

// step is one parsed model reply: either a final answer or a tool call.
type step struct {
	Final     string
	Done      bool
	Tool      string
	ToolInput string
}

type parseError struct {
	observation string
	text        string
}

func (e *parseError) Error() string {
	return e.observation
}

func (e *parseError) Unwrap() error {
	return ErrOutputParse
}

func parseOutput(text string) (step, error) {
	includesAnswer := strings.Contains(text, finalAnswerAction)

	if match := actionPattern.FindStringSubmatch(text); match != nil {
		if includesAnswer {
			return step{}, &parseError{observation: invalidResponseMessage, text: text}
		}

		input := strings.TrimSpace(match[2])
		input = strings.Trim(input, "\"")

		return step{
			Tool:      strings.TrimSpace(match[1]),
			ToolInput: input,
		}, nil
	}

	if includesAnswer {
		idx := strings.LastIndex(text, finalAnswerAction)
		return step{
			Final: strings.TrimSpace(text[idx+len(finalAnswerAction):]),
			Done:  true,
		}, nil
	}

	switch {
	case !actionOnlyPattern.MatchString(text):
		return step{}, &parseError{observation: missingActionMessage, text: text}
	case !actionInputPattern.MatchString(text):
		return step{}, &parseError{observation: missingActionInputMessage, text: text}
	default:
		return step{}, &parseError{observation: invalidResponseMessage, text: text}
	}
}
