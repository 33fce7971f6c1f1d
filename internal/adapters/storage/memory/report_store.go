package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

// ReportStore is a simple in-memory implementation of domain.ReportArchive.
type ReportStore struct {
	mu       sync.RWMutex
	records  map[domain.ReportID]*domain.ReportRecord
	byUserID map[domain.UserID][]domain.ReportID
}

func NewReportStore() *ReportStore {
	return &ReportStore{
		records:  make(map[domain.ReportID]*domain.ReportRecord),
		byUserID: make(map[domain.UserID][]domain.ReportID),
	}
}

// AppendReport saves a record. A missing ID gets a time-based one.
func (s *ReportStore) AppendReport(_ context.Context, rec *domain.ReportRecord) error {
	if rec == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = domain.ReportID(generateID(time.Now()))
	}

	cp := *rec
	if _, exists := s.records[cp.ID]; !exists {
		s.byUserID[cp.UserID] = append(s.byUserID[cp.UserID], cp.ID)
	}
	s.records[cp.ID] = &cp
	return nil
}

// ListReportsByUser returns the last `limit` records for a user.
// If limit <= 0, returns all.
func (s *ReportStore) ListReportsByUser(_ context.Context, userID domain.UserID, limit int) ([]*domain.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUserID[userID]
	if len(ids) == 0 {
		return []*domain.ReportRecord{}, nil
	}

	if limit <= 0 || limit > len(ids) {
		limit = len(ids)
	}
	selected := ids[len(ids)-limit:]

	out := make([]*domain.ReportRecord, 0, len(selected))
	for _, id := range selected {
		if r, ok := s.records[id]; ok {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func generateID(t time.Time) string {
	return t.Format("20060102150405.000000000")
}
