package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	session_key       TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	state             JSONB NOT NULL,
	emergency_contact JSONB,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	session_key TEXT NOT NULL,
	condition   TEXT NOT NULL,
	score       INTEGER NOT NULL,
	severity    TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS reports_user_created_idx ON reports (user_id, created_at);
`

// Store implements domain.ConversationStore and domain.ReportArchive on
// PostgreSQL. The conversation state is a JSONB column.
type Store struct {
	db *sql.DB
}

// Open connects with the "postgres" driver and creates the tables if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := NewStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetConversation(ctx context.Context, key domain.SessionKey) (*domain.Conversation, error) {
	query := `SELECT user_id, state, emergency_contact, created_at, updated_at FROM conversations WHERE session_key = $1`

	conv := domain.Conversation{Key: key}
	var stateJSON, contactJSON []byte

	err := s.db.QueryRowContext(ctx, query, string(key)).Scan(
		&conv.UserID,
		&stateJSON,
		&contactJSON,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("postgres GetConversation: %w", err)
	}

	if err := decodeColumns(&conv, stateJSON, contactJSON); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *Store) PutConversation(ctx context.Context, conv *domain.Conversation) error {
	stateJSON, contactJSON, err := encodeColumns(conv)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO conversations (session_key, user_id, state, emergency_contact, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_key) DO UPDATE SET
			user_id = $2,
			state = $3,
			emergency_contact = $4,
			created_at = $5,
			updated_at = $6
	`
	// lib/pq sends []byte as bytea, so JSON goes over the wire as text.
	contact := sql.NullString{String: string(contactJSON), Valid: contactJSON != nil}
	_, err = s.db.ExecContext(ctx, query,
		string(conv.Key), string(conv.UserID), string(stateJSON), contact, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres PutConversation: %w", err)
	}
	return nil
}

func (s *Store) AppendReport(ctx context.Context, rec *domain.ReportRecord) error {
	query := `
		INSERT INTO reports (id, user_id, session_key, condition, score, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		string(rec.ID), string(rec.UserID), string(rec.SessionKey),
		string(rec.Condition), rec.Score, string(rec.Severity), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres AppendReport: %w", err)
	}
	return nil
}

// ListReportsByUser returns the newest `limit` records, oldest first.
func (s *Store) ListReportsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.ReportRecord, error) {
	query := `
		SELECT id, user_id, session_key, condition, score, severity, created_at FROM (
			SELECT * FROM reports WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
		) newest ORDER BY created_at ASC
	`
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := s.db.QueryContext(ctx, query, string(userID), lim)
	if err != nil {
		return nil, fmt.Errorf("postgres ListReportsByUser: %w", err)
	}
	defer rows.Close()

	out := []*domain.ReportRecord{}
	for rows.Next() {
		var rec domain.ReportRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.SessionKey,
			&rec.Condition,
			&rec.Score,
			&rec.Severity,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres scan report: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres ListReportsByUser: %w", err)
	}
	return out, nil
}

func encodeColumns(conv *domain.Conversation) (stateJSON, contactJSON []byte, err error) {
	stateJSON, err = json.Marshal(conv.State)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	if conv.EmergencyContact != nil {
		contactJSON, err = json.Marshal(conv.EmergencyContact)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal emergency contact: %w", err)
		}
	}
	return stateJSON, contactJSON, nil
}

func decodeColumns(conv *domain.Conversation, stateJSON, contactJSON []byte) error {
	if err := json.Unmarshal(stateJSON, &conv.State); err != nil {
		return fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if len(contactJSON) > 0 {
		var ec domain.EmergencyContact
		if err := json.Unmarshal(contactJSON, &ec); err != nil {
			return fmt.Errorf("failed to unmarshal emergency contact: %w", err)
		}
		conv.EmergencyContact = &ec
	}
	return nil
}
