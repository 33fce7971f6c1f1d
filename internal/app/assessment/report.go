package assessment

import (
	"fmt"
	"math"
	"strings"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

// Score converts a yes count into the 0..10 scale.
func Score(yesCount int) int {
	return int(math.Round(float64(yesCount) / float64(domain.MaxAssessmentQuestions) * 10))
}

// Classify maps a score to its severity band: <=3 low, 4..6 moderate, >=7 severe.
func Classify(score int) domain.Severity {
	switch {
	case score <= 3:
		return domain.SeverityLow
	case score <= 6:
		return domain.SeverityModerate
	default:
		return domain.SeveritySevere
	}
}

// CountYes returns how many of the assessment answers in history are "yes".
//
// The answers are the last MaxAssessmentQuestions user turns whose normalized
// text is "yes" or "no"; anything typed at the menu before them is ignored.
// Fewer answers than that means the history was not produced by a finished
// assessment.
func CountYes(history []domain.Turn) (int, error) {
	answers := 0
	yes := 0
	for i := len(history) - 1; i >= 0 && answers < domain.MaxAssessmentQuestions; i-- {
		t := history[i]
		if t.Role != domain.RoleUser {
			continue
		}
		switch normalizeAnswer(t.Text) {
		case "yes":
			yes++
			answers++
		case "no":
			answers++
		}
	}
	if answers < domain.MaxAssessmentQuestions {
		return 0, fmt.Errorf("%w: history holds %d of %d answers", domain.ErrInvariant, answers, domain.MaxAssessmentQuestions)
	}
	return yes, nil
}

// BuildReport scores a finished history and assembles the report.
func BuildReport(c domain.Condition, history []domain.Turn) (domain.Report, error) {
	if !c.Valid() {
		return domain.Report{}, fmt.Errorf("%w: report for unknown condition %q", domain.ErrInvariant, c)
	}
	yes, err := CountYes(history)
	if err != nil {
		return domain.Report{}, err
	}

	score := Score(yes)
	severity := Classify(score)

	rep := domain.Report{
		Condition:       c,
		Score:           score,
		Severity:        severity,
		Referrals:       []domain.Doctor{},
		Recommendations: append([]string(nil), recommendations[c]...),
	}
	if severity == domain.SeveritySevere {
		rep.Referrals = Doctors(c)
	}
	if severity == domain.SeverityModerate || severity == domain.SeveritySevere {
		rep.Recommendations = append(rep.Recommendations, professionalHelp)
	}
	return rep, nil
}

// RenderReport formats the report as chat text. The disclaimer is always the
// last line.
func RenderReport(r domain.Report) string {
	var b strings.Builder
	b.WriteString("Assessment Complete\n\n")
	fmt.Fprintf(&b, "Score: %d/10\n", r.Score)
	fmt.Fprintf(&b, "Severity: %s\n", r.Severity.Label())

	if len(r.Referrals) > 0 {
		b.WriteString("\nRecommended Doctors:\n")
		for _, d := range r.Referrals {
			fmt.Fprintf(&b, "- %s (%s): %s\n", d.Name, d.Specialty, d.Contact)
		}
	}

	b.WriteString("\nRecommendations:\n")
	for _, line := range r.Recommendations {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(disclaimer)
	return b.String()
}

// AlertFor shapes a report for the emergency notifier.
func AlertFor(r domain.Report, contact domain.EmergencyContact) domain.Alert {
	return domain.Alert{
		RecipientName:   contact.Name,
		RecipientEmail:  contact.Email,
		Condition:       r.Condition.Title(),
		SeverityLabel:   r.Severity.Label(),
		Recommendations: append([]string(nil), r.Recommendations...),
	}
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
