package domain

import (
	"strings"
	"time"
)

type UserID string

// SessionKey identifies one conversation in the store. The HTTP layer keys
// conversations by user, so a user has at most one live assessment.
type SessionKey string

type ReportID string

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Condition string

const (
	ConditionDepression Condition = "depression"
	ConditionAnxiety    Condition = "anxiety"
	ConditionStress     Condition = "stress"
)

// Conditions lists every assessable condition in menu order.
var Conditions = []Condition{ConditionDepression, ConditionAnxiety, ConditionStress}

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionDepression, ConditionAnxiety, ConditionStress:
		return true
	}
	return false
}

// Title is the human label used in reports and alerts ("Depression").
func (c Condition) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Label is the upper-case form printed in reports.
func (s Severity) Label() string {
	return strings.ToUpper(string(s))
}

type Timestamp = time.Time
