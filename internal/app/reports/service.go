package reports

import (
	"context"

	"github.com/samber/oops"

	"github.com/Mahaveer86619/mindguide/internal/domain"
)

const defaultLimit = 20

// Service holds the logic of reading archived assessment reports.
type Service struct {
	archive domain.ReportArchive
}

func NewService(archive domain.ReportArchive) *Service {
	return &Service{
		archive: archive,
	}
}

// ListUserReports returns the last `limit` reports for a user, oldest first.
// If limit <= 0, a default of 20 is used.
func (s *Service) ListUserReports(ctx context.Context, userID domain.UserID, limit int) ([]*domain.ReportRecord, error) {
	if s.archive == nil {
		return []*domain.ReportRecord{}, nil
	}

	if limit <= 0 {
		limit = defaultLimit
	}

	out, err := s.archive.ListReportsByUser(ctx, userID, limit)
	if err != nil {
		return nil, oops.In("reports").
			Code("archive_unavailable").
			With("user_id", userID).
			Wrapf(err, "failed to list reports")
	}
	return out, nil
}
