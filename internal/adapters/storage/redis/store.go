package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

const defaultPrefix = "mindguide:"

// Store implements domain.ConversationStore and domain.ReportArchive on Redis.
// Conversations are JSON strings; reports live in one sorted set per user,
// scored by creation time.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for conversations. Reports do not expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so a Locker can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) conversationKey(key domain.SessionKey) string {
	return s.prefix + "conversation:" + string(key)
}

func (s *Store) reportsKey(userID domain.UserID) string {
	return s.prefix + "reports:" + string(userID)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) GetConversation(ctx context.Context, key domain.SessionKey) (*domain.Conversation, error) {
	val, err := s.client.Get(ctx, s.conversationKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(val, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

func (s *Store) PutConversation(ctx context.Context, conv *domain.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := s.client.Set(ctx, s.conversationKey(conv.Key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s *Store) AppendReport(ctx context.Context, rec *domain.ReportRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	err = s.client.ZAdd(ctx, s.reportsKey(rec.UserID), backend.Z{
		Score:  float64(rec.CreatedAt.UnixMilli()),
		Member: data,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append report: %w", err)
	}
	return nil
}

// ListReportsByUser returns the newest `limit` records, oldest first.
func (s *Store) ListReportsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.ReportRecord, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	members, err := s.client.ZRange(ctx, s.reportsKey(userID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	out := make([]*domain.ReportRecord, 0, len(members))
	for _, m := range members {
		var rec domain.ReportRecord
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
