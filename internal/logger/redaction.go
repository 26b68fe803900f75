package logger

import (
	"io"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Redactor masks credentials before they reach a log sink
type Redactor struct {
	patterns []*regexp.Regexp
	secrets  []string
}

func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{
		patterns: []*regexp.Regexp{
			// Groq, OpenAI and Anthropic keys
			regexp.MustCompile(`gsk_[a-zA-Z0-9]{20,}`),
			regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),

			// Google API keys
			regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),

			regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`),

			// connection strings
			regexp.MustCompile(`(postgres(?:ql)?://[^:/\s]+:)[^@\s]+@`),
		},
	}

	for _, s := range secrets {
		if len(strings.TrimSpace(s)) > 0 {
			r.secrets = append(r.secrets, s)
		}
	}

	return r
}

func (r *Redactor) Redact(s string) string {
	for _, secret := range r.secrets {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	for _, pattern := range r.patterns {
		if pattern.NumSubexp() > 0 {
			s = pattern.ReplaceAllString(s, "${1}"+redacted+"@")
			continue
		}
		s = pattern.ReplaceAllString(s, redacted)
	}
	return s
}

func (r *Redactor) Wrap(w io.Writer) io.Writer {
	return &redactingWriter{
		writer:   w,
		redactor: r,
	}
}

type redactingWriter struct {
	writer   io.Writer
	redactor *Redactor
}

// Write reports len(p) on success since the redacted line may be shorter.
func (w *redactingWriter) Write(p []byte) (int, error) {
	if _, err := w.writer.Write([]byte(w.redactor.Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
