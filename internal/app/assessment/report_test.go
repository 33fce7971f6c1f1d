package assessment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

func answers(vals ...string) []domain.Turn {
	h := []domain.Turn{{Role: domain.RoleModel, Text: menuText}, {Role: domain.RoleUser, Text: "1"}}
	for _, v := range vals {
		h = append(h, domain.Turn{Role: domain.RoleModel, Text: "Question"}, domain.Turn{Role: domain.RoleUser, Text: v})
	}
	return h
}

func TestScoreAndSeverityBoundaries(t *testing.T) {
	cases := []struct {
		yes      int
		score    int
		severity domain.Severity
	}{
		{0, 0, domain.SeverityLow},
		{1, 2, domain.SeverityLow},
		{2, 4, domain.SeverityModerate},
		{3, 6, domain.SeverityModerate},
		{4, 8, domain.SeveritySevere},
		{5, 10, domain.SeveritySevere},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.score, Score(tc.yes), "yes=%d", tc.yes)
		assert.Equal(t, tc.severity, Classify(tc.score), "score=%d", tc.score)
	}
	assert.Equal(t, domain.SeverityLow, Classify(3))
	assert.Equal(t, domain.SeverityModerate, Classify(4))
	assert.Equal(t, domain.SeverityModerate, Classify(6))
	assert.Equal(t, domain.SeveritySevere, Classify(7))
}

func TestBuildReportSevere(t *testing.T) {
	rep, err := BuildReport(domain.ConditionAnxiety, answers("yes", "Yes", " YES ", "yes", "yes"))
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Score)
	assert.Equal(t, domain.SeveritySevere, rep.Severity)
	require.Len(t, rep.Referrals, 2)
	assert.Equal(t, "Dr. Sharma", rep.Referrals[0].Name)
	assert.Equal(t, professionalHelp, rep.Recommendations[len(rep.Recommendations)-1])

	text := RenderReport(rep)
	assert.Contains(t, text, "Score: 10/10")
	assert.Contains(t, text, "Severity: SEVERE")
	assert.Contains(t, text, "Recommended Doctors:\n- Dr. Sharma (Anxiety & Panic Disorders): +91 9876543210")
	assert.True(t, strings.HasSuffix(text, disclaimer))
}

func TestBuildReportLow(t *testing.T) {
	rep, err := BuildReport(domain.ConditionStress, answers("no", "no", "no", "no", "no"))
	require.NoError(t, err)

	assert.Equal(t, 0, rep.Score)
	assert.Equal(t, domain.SeverityLow, rep.Severity)
	assert.Empty(t, rep.Referrals)
	assert.NotContains(t, rep.Recommendations, professionalHelp)

	text := RenderReport(rep)
	assert.NotContains(t, text, "Recommended Doctors")
	assert.True(t, strings.HasSuffix(text, disclaimer))
}

func TestBuildReportModerateAddsProfessionalHelp(t *testing.T) {
	rep, err := BuildReport(domain.ConditionDepression, answers("yes", "no", "yes", "no", "yes"))
	require.NoError(t, err)

	assert.Equal(t, 6, rep.Score)
	assert.Equal(t, domain.SeverityModerate, rep.Severity)
	assert.Empty(t, rep.Referrals)
	assert.Contains(t, rep.Recommendations, professionalHelp)
}

func TestCountYesIgnoresMenuNoiseAndRejectedInput(t *testing.T) {
	h := []domain.Turn{
		{Role: domain.RoleModel, Text: menuText},
		{Role: domain.RoleUser, Text: "yes"},
		{Role: domain.RoleUser, Text: "1"},
		{Role: domain.RoleUser, Text: "maybe"},
		{Role: domain.RoleUser, Text: "yes"},
		{Role: domain.RoleModel, Text: "yes"},
		{Role: domain.RoleUser, Text: "no"},
		{Role: domain.RoleUser, Text: "yes please"},
		{Role: domain.RoleUser, Text: "no"},
		{Role: domain.RoleUser, Text: "no"},
		{Role: domain.RoleUser, Text: "yes"},
	}
	yes, err := CountYes(h)
	require.NoError(t, err)
	assert.Equal(t, 2, yes)
}

func TestBuildReportMissingAnswersIsInvariant(t *testing.T) {
	_, err := BuildReport(domain.ConditionDepression, answers("yes", "no"))
	assert.ErrorIs(t, err, domain.ErrInvariant)

	_, err = BuildReport(domain.Condition(""), answers("yes", "yes", "yes", "yes", "yes"))
	assert.ErrorIs(t, err, domain.ErrInvariant)
}

func TestAlertFor(t *testing.T) {
	rep, err := BuildReport(domain.ConditionDepression, answers("yes", "yes", "yes", "yes", "no"))
	require.NoError(t, err)

	alert := AlertFor(rep, domain.EmergencyContact{Name: "Asha", Email: "asha@example.com"})
	assert.Equal(t, "Asha", alert.RecipientName)
	assert.Equal(t, "asha@example.com", alert.RecipientEmail)
	assert.Equal(t, "Depression", alert.Condition)
	assert.Equal(t, "SEVERE", alert.SeverityLabel)
	assert.Equal(t, rep.Recommendations, alert.Recommendations)
}
