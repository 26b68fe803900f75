package python

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	toolprovider "github.com/w-h-a/groomwise/tool_provider"
)

const (
	Name          = "Python_REPL"
	DefaultBinary = "python3"
)

// runner executes the input with only print, len, min and max available. When
// the last statement is an expression its repr is printed, so "850 < 1000"
// yields "True".
const runner = `import ast, sys
src = sys.stdin.read()
env = {"__builtins__": {"print": print, "len": len, "min": min, "max": max}}
try:
    tree = ast.parse(src)
    last = tree.body[-1] if tree.body else None
    if isinstance(last, ast.Expr):
        exec(compile(ast.Module(body=tree.body[:-1], type_ignores=[]), "<input>", "exec"), env)
        value = eval(compile(ast.Expression(body=last.value), "<input>", "eval"), env)
        if value is not None:
            print(repr(value))
    else:
        exec(compile(tree, "<input>", "exec"), env)
except Exception as e:
    print(type(e).__name__ + ": " + str(e))
`

var (
	leadingFence  = regexp.MustCompile("^(\\s|`)*(?i:python)?\\s*")
	trailingFence = regexp.MustCompile("(\\s|`)*$")
)

type pythonToolProvider struct {
	options toolprovider.Options
}

func (tp *pythonToolProvider) Name() string { return Name }

func (tp *pythonToolProvider) Description() string {
	return "A Python shell. Use this to execute python commands such as price or budget comparisons. Input should be a valid python command. If you want to see the output of a value, you should print it out with `print(...)`."
}

func (tp *pythonToolProvider) Run(ctx context.Context, input string) (string, error) {
	code := sanitize(input)
	if len(code) == 0 {
		return "", fmt.Errorf("python code: %w", toolprovider.ErrEmptyInput)
	}

	execCtx, cancel := context.WithTimeout(ctx, tp.options.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, tp.options.Binary, "-I", "-c", runner)
	cmd.Stdin = strings.NewReader(code)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("python execution timed out after %s", tp.options.Timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("python exited with code %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("run python: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// sanitize strips markdown code fences and a leading "python" tag.
func sanitize(input string) string {
	code := leadingFence.ReplaceAllString(input, "")
	code = trailingFence.ReplaceAllString(code, "")
	return code
}

func NewToolProvider(opts ...toolprovider.Option) toolprovider.ToolProvider {
	options := toolprovider.NewOptions(opts...)

	if len(options.Binary) == 0 {
		options.Binary = DefaultBinary
	}

	if options.Timeout == 0 {
		options.Timeout = 10 * time.Second
	}

	return &pythonToolProvider{
		options: options,
	}
}
