package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrMockUnavailable is returned by a MockLLM built with Failing.
var ErrMockUnavailable = errors.New("mock llm unavailable")

// MockLLM is a deterministic Completer for local mode and tests. It turns the
// theme embedded in the prompt into a fixed question.
type MockLLM struct {
	failing bool
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// NewFailingMockLLM returns a mock whose every call fails, to exercise the
// fallback question bank.
func NewFailingMockLLM() *MockLLM {
	return &MockLLM{failing: true}
}

func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.failing {
		return "", ErrMockUnavailable
	}
	return "Have you been struggling with " + themeOf(prompt) + " lately?", nil
}

// themeOf extracts the phrase between "question about " and " that".
func themeOf(prompt string) string {
	const start = "question about "
	i := strings.Index(prompt, start)
	if i < 0 {
		return "how you feel"
	}
	rest := prompt[i+len(start):]
	if j := strings.Index(rest, " that"); j >= 0 {
		rest = rest[:j]
	}
	if rest = strings.TrimSpace(rest); rest == "" {
		return "how you feel"
	}
	return rest
}
