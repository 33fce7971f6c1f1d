package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mahaveer86619/mindguide/internal/domain"
	"github.com/Mahaveer86619/mindguide/internal/observability"
)

// errMalformed marks completion output that normalizes to nothing usable.
var errMalformed = errors.New("malformed question text")

// Question is one generated assessment question. Not persisted.
type Question struct {
	Condition domain.Condition
	Index     int
	Theme     string
	Text      string
	Fallback  bool
}

// Label formats the question the way it is shown to the user.
func (q Question) Label() string {
	return fmt.Sprintf("Question %d/%d:\n%s\n(Answer Yes or No)", q.Index+1, domain.MaxAssessmentQuestions, q.Text)
}

// Generator phrases assessment questions through a Completer and falls back
// to the static bank on any failure.
type Generator struct {
	completer  domain.Completer
	onFallback func(c domain.Condition, index int, err error)
}

type GeneratorOption func(*Generator)

// WithFallbackHook is called every time the static bank is used.
func WithFallbackHook(fn func(c domain.Condition, index int, err error)) GeneratorOption {
	return func(g *Generator) {
		g.onFallback = fn
	}
}

// NewGenerator builds a generator. A nil completer always falls back.
func NewGenerator(completer domain.Completer, opts ...GeneratorOption) *Generator {
	g := &Generator{completer: completer}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the question for (c, index). It never fails: a completion
// error, a cancelled context or unusable output yields the fallback question.
// An unknown condition or out-of-range index panics.
func (g *Generator) Generate(ctx context.Context, c domain.Condition, index int) Question {
	theme := Theme(c, index)
	q := Question{Condition: c, Index: index, Theme: theme}

	text, err := g.complete(ctx, theme)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("question generation failed, using fallback",
			"condition", c,
			"index", index,
			"error", err,
		)
		if g.onFallback != nil {
			g.onFallback(c, index, err)
		}
		q.Text = FallbackQuestion(c, index)
		q.Fallback = true
		return q
	}

	q.Text = text
	return q
}

func (g *Generator) complete(ctx context.Context, theme string) (string, error) {
	if g.completer == nil {
		return "", errors.New("no completer configured")
	}
	raw, err := g.completer.Complete(ctx, questionPrompt(theme))
	if err != nil {
		return "", err
	}
	text := normalizeQuestion(raw)
	if text == "" {
		return "", errMalformed
	}
	return text, nil
}

func questionPrompt(theme string) string {
	return "You are an AI mental health assistant.\n" +
		"Generate a single yes/no question about " + theme + " that helps assess mental health.\n" +
		"The question must be direct, sensitive, short, and use everyday language a normal person understands.\n" +
		"It must not be insensitive or offensive, and it must stay on the theme.\n" +
		"Return only the question text, nothing else.\n" +
		"Example: Do you often feel overwhelmed by daily tasks?"
}

const quoteChars = "\"'`“”‘’"

// normalizeQuestion picks the question out of a completion. The first line
// ending in "?" wins; otherwise a single bare line is accepted and given a
// "?". Anything else, such as a preamble with no question, returns "".
func normalizeQuestion(raw string) string {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(strings.Trim(strings.TrimSpace(l), quoteChars))
		if strings.Trim(l, "?. ") == "" {
			continue
		}
		if strings.HasSuffix(l, "?") {
			return l
		}
		lines = append(lines, l)
	}

	if len(lines) != 1 || strings.HasSuffix(lines[0], ":") {
		return ""
	}
	return strings.TrimRight(lines[0], ". ") + "?"
}
