package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

func TestStateJSONShape(t *testing.T) {
	st := domain.ConversationState{
		Stage: domain.Assessment{Condition: domain.ConditionStress, QuestionCount: 2},
		History: []domain.Turn{
			{Role: domain.RoleModel, Text: "menu"},
			{Role: domain.RoleUser, Text: "3"},
		},
	}

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"stage": "assessment",
		"condition": "stress",
		"question_count": 2,
		"history": [{"role":"model","text":"menu"},{"role":"user","text":"3"}]
	}`, string(data))

	var back domain.ConversationState
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, st, back)
}

func TestStartRecordHasNoCondition(t *testing.T) {
	rec := domain.ConversationState{Stage: domain.Start{}}.Record()
	assert.Equal(t, domain.StageStart, rec.Stage)
	assert.Empty(t, rec.Condition)
	assert.NotNil(t, rec.History)
}

func TestIllegalRecordsAreRejected(t *testing.T) {
	bad := []string{
		`{"stage":"start","condition":"anxiety","question_count":0,"history":[]}`,
		`{"stage":"start","question_count":3,"history":[]}`,
		`{"stage":"assessment","question_count":0,"history":[]}`,
		`{"stage":"assessment","condition":"anxiety","question_count":5,"history":[]}`,
		`{"stage":"assessment","condition":"anxiety","question_count":-1,"history":[]}`,
		`{"stage":"done","condition":"grief","history":[]}`,
		`{"stage":"paused","history":[]}`,
	}
	for _, raw := range bad {
		var st domain.ConversationState
		err := json.Unmarshal([]byte(raw), &st)
		assert.ErrorIs(t, err, domain.ErrCorruptState, raw)
	}
}

func TestWithTurnDoesNotAlias(t *testing.T) {
	base := domain.ConversationState{
		Stage:   domain.Start{},
		History: make([]domain.Turn, 1, 8),
	}
	a := base.WithTurn(domain.Turn{Role: domain.RoleUser, Text: "a"})
	b := base.WithTurn(domain.Turn{Role: domain.RoleUser, Text: "b"})

	assert.Len(t, base.History, 1)
	assert.Equal(t, "a", a.History[1].Text)
	assert.Equal(t, "b", b.History[1].Text)
}

func TestConditionAndSeverityLabels(t *testing.T) {
	assert.Equal(t, "Depression", domain.ConditionDepression.Title())
	assert.Equal(t, "SEVERE", domain.SeveritySevere.Label())
	assert.False(t, domain.Condition("grief").Valid())
}
