package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

// Outcome classifies what an Advance call did with the inbound message.
type Outcome int

const (
	// Accepted: the message moved the conversation forward.
	Accepted Outcome = iota
	// Rejected: the message was not valid for the stage; the reply re-prompts.
	Rejected
	// Terminal: the session is done; nothing changes.
	Terminal
	// Failed: an internal error; Result.State is the input state.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Terminal:
		return "terminal"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the outcome of one turn.
type Result struct {
	Reply   string
	State   domain.ConversationState
	Outcome Outcome

	// Question is set when the turn emitted a question.
	Question *Question
	// Report is set on the turn that finished the assessment.
	Report *domain.Report
	// Err holds the cause of a Failed outcome.
	Err error
}

// Machine drives one conversation turn at a time. It holds no per-session
// data and is safe for concurrent use; callers must still serialize turns
// for the same session.
type Machine struct {
	generator *Generator
}

// NewMachine builds a machine; a nil generator always uses the fallback bank.
func NewMachine(generator *Generator) *Machine {
	if generator == nil {
		generator = NewGenerator(nil)
	}
	return &Machine{generator: generator}
}

// StartNewSession returns the menu and a fresh Start state whose history
// holds the menu as its only model turn.
func StartNewSession() (string, domain.ConversationState) {
	st := domain.ConversationState{
		Stage:   domain.Start{},
		History: []domain.Turn{{Role: domain.RoleModel, Text: menuText}},
	}
	return menuText, st
}

// Advance applies one inbound message to state. Invalid input is never an
// error; it yields a Rejected result. The given state is not modified.
func (m *Machine) Advance(ctx context.Context, state domain.ConversationState, message string) Result {
	if err := state.Validate(); err != nil {
		return failed(state, err)
	}

	if _, done := state.Stage.(domain.Done); done {
		return Result{Reply: terminalReply, State: state, Outcome: Terminal}
	}

	next := state.WithTurn(domain.Turn{Role: domain.RoleUser, Text: message})

	switch st := state.Stage.(type) {
	case domain.Start:
		return m.selectTest(ctx, next, message)
	case domain.Assessment:
		return m.answer(ctx, state, next, st, message)
	}
	return failed(state, fmt.Errorf("%w: unhandled stage %T", domain.ErrInvariant, state.Stage))
}

func (m *Machine) selectTest(ctx context.Context, next domain.ConversationState, message string) Result {
	condition, ok := menuSelections[strings.TrimSpace(message)]
	if !ok {
		return Result{Reply: selectionReprompt, State: next, Outcome: Rejected}
	}

	q := m.generator.Generate(ctx, condition, 0)
	label := q.Label()

	next.Stage = domain.Assessment{Condition: condition, QuestionCount: 0}
	next = next.WithTurn(domain.Turn{Role: domain.RoleModel, Text: label})
	return Result{Reply: label, State: next, Outcome: Accepted, Question: &q}
}

func (m *Machine) answer(ctx context.Context, prev, next domain.ConversationState, st domain.Assessment, message string) Result {
	switch normalizeAnswer(message) {
	case "yes", "no":
	default:
		return Result{Reply: answerReprompt, State: next, Outcome: Rejected}
	}

	count := st.QuestionCount + 1
	if count < domain.MaxAssessmentQuestions {
		q := m.generator.Generate(ctx, st.Condition, count)
		label := q.Label()

		next.Stage = domain.Assessment{Condition: st.Condition, QuestionCount: count}
		next = next.WithTurn(domain.Turn{Role: domain.RoleModel, Text: label})
		return Result{Reply: label, State: next, Outcome: Accepted, Question: &q}
	}

	rep, err := BuildReport(st.Condition, next.History)
	if err != nil {
		return failed(prev, err)
	}
	text := RenderReport(rep)

	next.Stage = domain.Done{Condition: st.Condition}
	next = next.WithTurn(domain.Turn{Role: domain.RoleModel, Text: text})
	return Result{Reply: text, State: next, Outcome: Accepted, Report: &rep}
}

func failed(state domain.ConversationState, err error) Result {
	return Result{Reply: failureReply, State: state, Outcome: Failed, Err: err}
}
