package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

const subjectFormat = "MindGuide: %s assessment result needs attention"

const textBody = `Hello {{.RecipientName}},

You are listed as the emergency contact for someone who just completed a
MindGuide {{.Condition}} self-assessment. The result was {{.SeverityLabel}}.

This is not a diagnosis, but it may be a good moment to check in with them.

What we suggested to them:
{{range .Recommendations}}- {{.}}
{{end}}
If you believe they are in immediate danger, contact local emergency services.

The MindGuide team
`

const htmlBody = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>MindGuide alert</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<p>Hello {{.RecipientName}},</p>
<p>You are listed as the emergency contact for someone who just completed a
MindGuide <strong>{{.Condition}}</strong> self-assessment. The result was
<strong>{{.SeverityLabel}}</strong>.</p>
<p>This is not a diagnosis, but it may be a good moment to check in with them.</p>
<p>What we suggested to them:</p>
<ul>
{{range .Recommendations}}<li>{{.}}</li>
{{end}}</ul>
<p>If you believe they are in immediate danger, contact local emergency services.</p>
<p>The MindGuide team</p>
</body>
</html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
)

// Message is a rendered alert.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Render builds the subject and both bodies for an alert.
func Render(alert domain.Alert) (Message, error) {
	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, alert); err != nil {
		return Message{}, fmt.Errorf("rendering text body: %w", err)
	}
	if err := htmlTmpl.Execute(&html, alert); err != nil {
		return Message{}, fmt.Errorf("rendering html body: %w", err)
	}
	return Message{
		Subject: fmt.Sprintf(subjectFormat, alert.Condition),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
