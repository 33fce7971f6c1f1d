package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the assessment counters. A nil *Metrics is valid and
// records nothing, so services can run without a registry.
type Metrics struct {
	SessionsStarted      prometheus.Counter
	Turns                *prometheus.CounterVec
	AssessmentsCompleted *prometheus.CounterVec
	QuestionFallbacks    *prometheus.CounterVec
	Notifications        *prometheus.CounterVec
	TurnDuration         prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindguide_sessions_started_total",
			Help: "Assessments started (menu shown).",
		}),
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindguide_turns_total",
			Help: "Inbound messages by stage and outcome.",
		}, []string{"stage", "outcome"}),
		AssessmentsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindguide_assessments_completed_total",
			Help: "Finished assessments by condition and severity.",
		}, []string{"condition", "severity"}),
		QuestionFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindguide_question_fallbacks_total",
			Help: "Questions served from the static bank after a generation failure.",
		}, []string{"condition"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindguide_emergency_notifications_total",
			Help: "Emergency alerts by result.",
		}, []string{"result"}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mindguide_turn_duration_seconds",
			Help:    "Time to process one inbound message, including question generation.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.SessionsStarted,
		m.Turns,
		m.AssessmentsCompleted,
		m.QuestionFallbacks,
		m.Notifications,
		m.TurnDuration,
	)
	return m
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

func (m *Metrics) Turn(stage, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(stage, outcome).Inc()
	m.TurnDuration.Observe(seconds)
}

func (m *Metrics) Completed(condition, severity string) {
	if m == nil {
		return
	}
	m.AssessmentsCompleted.WithLabelValues(condition, severity).Inc()
}

func (m *Metrics) Fallback(condition string) {
	if m == nil {
		return
	}
	m.QuestionFallbacks.WithLabelValues(condition).Inc()
}

func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}
