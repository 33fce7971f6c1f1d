package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// MaxAssessmentQuestions is the fixed number of yes/no questions per assessment.
const MaxAssessmentQuestions = 5

type StageName string

const (
	StageStart      StageName = "start"
	StageAssessment StageName = "assessment"
	StageDone       StageName = "done"
)

// Stage is a closed union: Start, Assessment or Done.
// Only the types in this package implement it.
type Stage interface {
	Name() StageName
	isStage()
}

// Start waits for the user to pick a test from the menu.
type Start struct{}

// Assessment is the question/answer phase for a selected condition.
type Assessment struct {
	Condition     Condition
	QuestionCount int
}

// Done is terminal; the report has been appended to the history.
type Done struct {
	Condition Condition
}

func (Start) Name() StageName      { return StageStart }
func (Assessment) Name() StageName { return StageAssessment }
func (Done) Name() StageName       { return StageDone }

func (Start) isStage()      {}
func (Assessment) isStage() {}
func (Done) isStage()       {}

// Turn is one entry of the conversation transcript.
type Turn struct {
	Role Role   `json:"role" firestore:"role"`
	Text string `json:"text" firestore:"text"`
}

// ConversationState is the per-session state owned by the assessment machine.
// It is treated as a value: transitions return a new state and never touch
// the history slice of the state they were given.
type ConversationState struct {
	Stage   Stage
	History []Turn
}

// ConditionOf returns the selected condition, if any.
func (s ConversationState) ConditionOf() (Condition, bool) {
	switch st := s.Stage.(type) {
	case Assessment:
		return st.Condition, true
	case Done:
		return st.Condition, true
	}
	return "", false
}

// QuestionCount returns the number of accepted answers so far.
func (s ConversationState) QuestionCount() int {
	switch st := s.Stage.(type) {
	case Assessment:
		return st.QuestionCount
	case Done:
		return MaxAssessmentQuestions
	}
	return 0
}

// StageName is nil-safe: a zero state reports StageStart.
func (s ConversationState) StageName() StageName {
	if s.Stage == nil {
		return StageStart
	}
	return s.Stage.Name()
}

// Clone returns a copy with its own history backing array.
func (s ConversationState) Clone() ConversationState {
	return ConversationState{
		Stage:   s.Stage,
		History: slices.Clone(s.History),
	}
}

// WithTurn returns a copy of s with t appended.
func (s ConversationState) WithTurn(t Turn) ConversationState {
	out := ConversationState{
		Stage:   s.Stage,
		History: make([]Turn, len(s.History), len(s.History)+1),
	}
	copy(out.History, s.History)
	out.History = append(out.History, t)
	return out
}

// Validate checks the stage fields against the union's rules.
func (s ConversationState) Validate() error {
	switch st := s.Stage.(type) {
	case nil:
		return fmt.Errorf("%w: stage is not set", ErrInvariant)
	case Start:
		return nil
	case Assessment:
		if !st.Condition.Valid() {
			return fmt.Errorf("%w: assessment with unknown condition %q", ErrInvariant, st.Condition)
		}
		if st.QuestionCount < 0 || st.QuestionCount >= MaxAssessmentQuestions {
			return fmt.Errorf("%w: question count %d out of range", ErrInvariant, st.QuestionCount)
		}
		return nil
	case Done:
		if !st.Condition.Valid() {
			return fmt.Errorf("%w: done with unknown condition %q", ErrInvariant, st.Condition)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown stage %T", ErrInvariant, s.Stage)
	}
}

// StateRecord is the flat persistence shape of ConversationState.
type StateRecord struct {
	Stage         StageName `json:"stage" firestore:"stage"`
	Condition     Condition `json:"condition,omitempty" firestore:"condition"`
	QuestionCount int       `json:"question_count" firestore:"question_count"`
	History       []Turn    `json:"history" firestore:"history"`
}

// Record flattens the state for storage.
func (s ConversationState) Record() StateRecord {
	rec := StateRecord{
		Stage:   s.StageName(),
		History: slices.Clone(s.History),
	}
	if rec.History == nil {
		rec.History = []Turn{}
	}
	switch st := s.Stage.(type) {
	case Assessment:
		rec.Condition = st.Condition
		rec.QuestionCount = st.QuestionCount
	case Done:
		rec.Condition = st.Condition
		rec.QuestionCount = MaxAssessmentQuestions
	}
	return rec
}

// State rebuilds the union from a stored record, rejecting combinations the
// union cannot represent.
func (r StateRecord) State() (ConversationState, error) {
	var stage Stage
	switch r.Stage {
	case StageStart:
		if r.Condition != "" || r.QuestionCount != 0 {
			return ConversationState{}, fmt.Errorf("%w: start stage carries condition %q / count %d",
				ErrCorruptState, r.Condition, r.QuestionCount)
		}
		stage = Start{}
	case StageAssessment:
		stage = Assessment{Condition: r.Condition, QuestionCount: r.QuestionCount}
	case StageDone:
		stage = Done{Condition: r.Condition}
	default:
		return ConversationState{}, fmt.Errorf("%w: unknown stage %q", ErrCorruptState, r.Stage)
	}

	st := ConversationState{Stage: stage, History: slices.Clone(r.History)}
	if err := st.Validate(); err != nil {
		return ConversationState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return st, nil
}

func (s ConversationState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Record())
}

func (s *ConversationState) UnmarshalJSON(data []byte) error {
	var rec StateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	st, err := rec.State()
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// EmergencyContact receives an alert when an assessment ends SEVERE.
type EmergencyContact struct {
	Name  string `json:"name" firestore:"name"`
	Email string `json:"email" firestore:"email"`
}

// Conversation is what the store persists under a session key: the machine's
// state plus the metadata the service needs around it.
type Conversation struct {
	Key              SessionKey        `json:"key"`
	UserID           UserID            `json:"user_id"`
	State            ConversationState `json:"state"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
	CreatedAt        Timestamp         `json:"created_at"`
	UpdatedAt        Timestamp         `json:"updated_at"`
}
