// Package prompt builds the GroomWise ReAct instructions.
package prompt

import (
	"bytes"
	"fmt"
	"strings"

	toolprovider "github.com/w-h-a/groomwise/tool_provider"
)

const (
	InputPlaceholder      = "{input}"
	ScratchpadPlaceholder = "{agent_scratchpad}"
)

// Template is built once from the tool set and never changes afterwards.
type Template struct {
	text      string
	toolNames []string
}

func (t *Template) Render(input string, scratchpad string) string {
	return strings.NewReplacer(
		InputPlaceholder, input,
		ScratchpadPlaceholder, scratchpad,
	).Replace(t.text)
}

func (t *Template) ToolNames() []string {
	names := make([]string, len(t.toolNames))
	copy(names, t.toolNames)
	return names
}

func (t *Template) String() string {
	return t.text
}

func New(tools []toolprovider.ToolProvider, opts ...Option) *Template {
	options := NewOptions(opts...)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name())
	}

	joined := strings.Join(names, ", ")

	var sb bytes.Buffer

	sb.WriteString("You are GroomWise, a polite, intelligent personal grooming advisor that helps users select skincare, haircare, and wellness products based on their needs.\n\n")

	sb.WriteString("Your mission:\n")
	sb.WriteString("- ALWAYS understand the user's skin type, concern, and budget BEFORE using tools.\n")
	sb.WriteString("- DO NOT answer or search blindly. First, gather enough context.\n")
	sb.WriteString("- If the input is vague (e.g., \"Suggest something for my face\" or \"I have oily skin\"), politely ask for clarification.\n\n")

	sb.WriteString(fmt.Sprintf("NEVER use %s until:\n", orList(names)))
	sb.WriteString("1. You know the user's skin/hair type.\n")
	sb.WriteString("2. You understand the concern (e.g., acne, dark circles).\n")
	sb.WriteString("3. You know the budget or have verified it's not needed.\n\n")

	sb.WriteString("Once you have this info, proceed using the following ReAct reasoning format:\n\n")
	sb.WriteString("---\n\n")
	sb.WriteString("TOOL INSTRUCTION FORMAT\n\n")
	sb.WriteString("Thought: Describe what you're thinking and why\n")
	sb.WriteString(fmt.Sprintf("Action: One of [%s]\n", joined))
	sb.WriteString("Action Input: The input string for the tool\n")
	sb.WriteString("Observation: Result from the tool\n")
	sb.WriteString("... (You can repeat Thought/Action/Observation)\n")
	sb.WriteString("Final Answer: Your final recommendation with reasoning\n\n")
	sb.WriteString("---\n\n")

	sb.WriteString("Example 1 (Clarification First):\n\n")
	sb.WriteString("Question: I have oily skin.\n")
	sb.WriteString("Thought: The user mentioned a skin type but didn't give a budget or a specific concern.\n")
	sb.WriteString("Final Answer: Could you please tell me more? Do you have any specific concern like acne or dark circles? And what's your budget?\n\n")
	sb.WriteString("---\n\n")

	sb.WriteString("Example 2 (Tool Use After Info):\n\n")
	sb.WriteString("Question: I have oily skin and acne. My budget is under 1000 PKR.\n")
	sb.WriteString("Thought: I have all needed info. I'll search for suitable products.\n")
	sb.WriteString(fmt.Sprintf("Action: %s\n", options.SearchTool))
	sb.WriteString("Action Input: best face wash for oily acne-prone skin under 1000 PKR in Pakistan\n")
	sb.WriteString("Observation: [Search results]\n")
	sb.WriteString("Thought: I need to check if prices fit the budget.\n")
	sb.WriteString(fmt.Sprintf("Action: %s\n", options.PythonTool))
	sb.WriteString("Action Input: 850 < 1000\n")
	sb.WriteString("Observation: True\n")
	sb.WriteString("Final Answer: Product A is under your budget and works for oily skin and acne.\n\n")
	sb.WriteString("---\n\n")

	sb.WriteString("TOOLS:\n")
	for _, tool := range tools {
		sb.WriteString(fmt.Sprintf("%s: %s\n", tool.Name(), tool.Description()))
	}
	sb.WriteString("\n")

	sb.WriteString("Begin!\n\n")
	sb.WriteString("Question: " + InputPlaceholder + "\n")
	sb.WriteString("Thought: " + ScratchpadPlaceholder)

	return &Template{
		text:      sb.String(),
		toolNames: names,
	}
}

func orList(names []string) string {
	switch len(names) {
	case 0:
		return "any tool"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}
