package notify

import (
	"context"

	"github.com/Mahaveer86619/mindguide/internal/domain"
	"github.com/Mahaveer86619/mindguide/internal/observability"
)

// LogNotifier writes alerts to the request logger instead of sending them.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) NotifyEmergency(ctx context.Context, alert domain.Alert) error {
	rendered, err := Render(alert)
	if err != nil {
		return err
	}
	observability.LoggerFromContext(ctx).Info("emergency alert (log channel)",
		"recipient", alert.RecipientEmail,
		"subject", rendered.Subject,
		"severity", alert.SeverityLabel,
	)
	return nil
}
