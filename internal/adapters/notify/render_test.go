package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

func sampleAlert() domain.Alert {
	return domain.Alert{
		RecipientName:   "Ann <admin>",
		RecipientEmail:  "ann@example.com",
		Condition:       "Depression",
		SeverityLabel:   "SEVERE",
		Recommendations: []string{"Talk to someone you trust", "Keep a regular sleep schedule"},
	}
}

func TestRenderBodies(t *testing.T) {
	msg, err := Render(sampleAlert())
	require.NoError(t, err)

	assert.Equal(t, "MindGuide: Depression assessment result needs attention", msg.Subject)
	assert.Contains(t, msg.Text, "Hello Ann <admin>,")
	assert.Contains(t, msg.Text, "The result was SEVERE.")
	assert.Contains(t, msg.Text, "- Keep a regular sleep schedule\n")

	assert.Contains(t, msg.HTML, "Hello Ann &lt;admin&gt;,")
	assert.Contains(t, msg.HTML, "<li>Talk to someone you trust</li>")
}

func TestLogNotifierNeverFails(t *testing.T) {
	assert.NoError(t, NewLogNotifier().NotifyEmergency(context.Background(), sampleAlert()))
}

func TestSMTPNotifierRejectsMissingRecipient(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{Host: "localhost", Port: 2525, From: "bot@example.com"})
	require.NoError(t, err)

	alert := sampleAlert()
	alert.RecipientEmail = ""
	assert.Error(t, n.NotifyEmergency(context.Background(), alert))
}
