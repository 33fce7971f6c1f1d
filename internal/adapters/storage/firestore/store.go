package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) conversationsCol() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *Store) conversationDoc(key domain.SessionKey) *firestore.DocumentRef {
	return s.conversationsCol().Doc(string(key))
}

func (s *Store) reportsCol() *firestore.CollectionRef {
	return s.client.Collection("reports")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type conversationDoc struct {
	UserID           string                   `firestore:"user_id"`
	State            domain.StateRecord       `firestore:"state"`
	EmergencyContact *domain.EmergencyContact `firestore:"emergency_contact"`
	CreatedAt        time.Time                `firestore:"created_at"`
	UpdatedAt        time.Time                `firestore:"updated_at"`
}

type reportDoc struct {
	UserID     string    `firestore:"user_id"`
	SessionKey string    `firestore:"session_key"`
	Condition  string    `firestore:"condition"`
	Score      int       `firestore:"score"`
	Severity   string    `firestore:"severity"`
	CreatedAt  time.Time `firestore:"created_at"`
}

func toConversationDoc(conv *domain.Conversation) conversationDoc {
	return conversationDoc{
		UserID:           string(conv.UserID),
		State:            conv.State.Record(),
		EmergencyContact: conv.EmergencyContact,
		CreatedAt:        conv.CreatedAt,
		UpdatedAt:        conv.UpdatedAt,
	}
}

func fromConversationDoc(key domain.SessionKey, doc conversationDoc) (*domain.Conversation, error) {
	state, err := doc.State.State()
	if err != nil {
		return nil, err
	}
	return &domain.Conversation{
		Key:              key,
		UserID:           domain.UserID(doc.UserID),
		State:            state,
		EmergencyContact: doc.EmergencyContact,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) GetConversation(ctx context.Context, key domain.SessionKey) (*domain.Conversation, error) {
	snap, err := s.conversationDoc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetConversation: %w", err)
	}

	var doc conversationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetConversation decode: %w", err)
	}
	return fromConversationDoc(key, doc)
}

// PutConversation overwrites the whole document; history is small and bounded.
func (s *Store) PutConversation(ctx context.Context, conv *domain.Conversation) error {
	_, err := s.conversationDoc(conv.Key).Set(ctx, toConversationDoc(conv))
	if err != nil {
		return fmt.Errorf("firestore PutConversation: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// ReportArchive implementation
// ─────────────────────────────────────────

func (s *Store) AppendReport(ctx context.Context, rec *domain.ReportRecord) error {
	doc := reportDoc{
		UserID:     string(rec.UserID),
		SessionKey: string(rec.SessionKey),
		Condition:  string(rec.Condition),
		Score:      rec.Score,
		Severity:   string(rec.Severity),
		CreatedAt:  rec.CreatedAt,
	}

	ref := s.reportsCol().NewDoc()
	if rec.ID != "" {
		ref = s.reportsCol().Doc(string(rec.ID))
	}
	if _, err := ref.Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendReport: %w", err)
	}
	rec.ID = domain.ReportID(ref.ID)
	return nil
}

// ListReportsByUser queries newest first and reverses, so callers get the
// newest `limit` records oldest first.
func (s *Store) ListReportsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.ReportRecord, error) {
	q := s.reportsCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []*domain.ReportRecord{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListReportsByUser: %w", err)
		}

		var doc reportDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode reportDoc: %w", err)
		}

		out = append(out, &domain.ReportRecord{
			ID:         domain.ReportID(snap.Ref.ID),
			UserID:     domain.UserID(doc.UserID),
			SessionKey: domain.SessionKey(doc.SessionKey),
			Condition:  domain.Condition(doc.Condition),
			Score:      doc.Score,
			Severity:   domain.Severity(doc.Severity),
			CreatedAt:  doc.CreatedAt,
		})
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
