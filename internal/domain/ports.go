package domain

import (
	"context"
	"time"
)

// Completer is the text-completion service used to phrase questions.
// Implementations make a single attempt; callers handle failure.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ConversationStore persists one conversation per session key.
// Writes are last-write-wins; callers serialize turns per key.
type ConversationStore interface {
	// GetConversation returns ErrSessionNotFound when the key is absent.
	GetConversation(ctx context.Context, key SessionKey) (*Conversation, error)
	PutConversation(ctx context.Context, conv *Conversation) error
}

// ReportArchive keeps the summaries of finished assessments.
type ReportArchive interface {
	AppendReport(ctx context.Context, rec *ReportRecord) error
	// ListReportsByUser returns the newest `limit` records, oldest first.
	// limit <= 0 returns all.
	ListReportsByUser(ctx context.Context, userID UserID, limit int) ([]*ReportRecord, error)
}

// Notifier delivers emergency alerts for severe results.
type Notifier interface {
	NotifyEmergency(ctx context.Context, alert Alert) error
}

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates per-session turns across replicas.
type DistributedLocker interface {
	// Lock blocks until the lock is held or ctx is done.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
