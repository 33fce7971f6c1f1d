package domain

import "time"

// Doctor is static referral data, grouped by condition.
type Doctor struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Contact   string `json:"contact"`
}

// Report is the outcome of a completed assessment.
type Report struct {
	Condition       Condition `json:"condition"`
	Score           int       `json:"score"`
	Severity        Severity  `json:"severity"`
	Referrals       []Doctor  `json:"referrals"`
	Recommendations []string  `json:"recommendations"`
}

// Alert is the renderable payload handed to the emergency notifier.
type Alert struct {
	RecipientName   string
	RecipientEmail  string
	Condition       string
	SeverityLabel   string
	Recommendations []string
}

// ReportRecord is the archived summary of a finished assessment.
type ReportRecord struct {
	ID         ReportID   `json:"id"`
	UserID     UserID     `json:"user_id"`
	SessionKey SessionKey `json:"session_key"`
	Condition  Condition  `json:"condition"`
	Score      int        `json:"score"`
	Severity   Severity   `json:"severity"`
	CreatedAt  time.Time  `json:"created_at"`
}
