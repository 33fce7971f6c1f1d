package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/Mahaveer86619/mindguide/internal/app/assessment"
	"github.com/Mahaveer86619/mindguide/internal/app/session"
	"github.com/Mahaveer86619/mindguide/internal/domain"
	"github.com/Mahaveer86619/mindguide/internal/observability"
)

type Service struct {
	machine  *assessment.Machine
	store    domain.ConversationStore
	archive  domain.ReportArchive
	notifier domain.Notifier
	locks    *session.Manager
	metrics  *observability.Metrics

	autoStart     bool
	notifyTimeout time.Duration
	now           func() time.Time
	newID         func() string
}

const defaultNotifyTimeout = 15 * time.Second

type Option func(*Service)

// WithArchive records a summary of every finished assessment.
func WithArchive(archive domain.ReportArchive) Option {
	return func(s *Service) {
		s.archive = archive
	}
}

// WithNotifier alerts the emergency contact on SEVERE results.
func WithNotifier(notifier domain.Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithLocks(locks *session.Manager) Option {
	return func(s *Service) {
		s.locks = locks
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAutoStart makes SendMessage start a session when none exists.
func WithAutoStart(enabled bool) Option {
	return func(s *Service) {
		s.autoStart = enabled
	}
}

// WithNotifyTimeout bounds the alert call, which no longer follows the
// request context.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.notifyTimeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(machine *assessment.Machine, store domain.ConversationStore, opts ...Option) *Service {
	s := &Service{
		machine:       machine,
		store:         store,
		notifyTimeout: defaultNotifyTimeout,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = session.NewManager()
	}
	return s
}

// sessionKey maps a user to their single live session.
func sessionKey(userID domain.UserID) domain.SessionKey {
	return domain.SessionKey(userID)
}

type StartSessionInput struct {
	UserID           domain.UserID
	EmergencyContact *domain.EmergencyContact
}

type StartSessionOutput struct {
	Reply        string
	Conversation *domain.Conversation
}

// StartSession stores a fresh conversation for the user, replacing any
// previous one, and returns the menu.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	key := sessionKey(in.UserID)
	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)
	log.Info("starting new session")

	var out *StartSessionOutput
	err := s.locks.WithLock(ctx, key, func(ctx context.Context) error {
		reply, conv := s.newConversation(in.UserID, in.EmergencyContact)
		if err := s.store.PutConversation(ctx, conv); err != nil {
			log.Error("failed to store conversation", "error", err)
			return unavailable(err, in.UserID, "failed to store conversation")
		}
		out = &StartSessionOutput{Reply: reply, Conversation: conv}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionStarted()
	log.Info("session started")
	return out, nil
}

type SendMessageInput struct {
	UserID domain.UserID
	Text   string
}

type SendMessageOutput struct {
	Reply         string
	Stage         domain.StageName
	QuestionCount int
	Outcome       assessment.Outcome
	Report        *domain.Report
}

// SendMessage advances the user's conversation by one message. Turns for
// the same user are serialized; the state is saved only after the turn.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	key := sessionKey(in.UserID)
	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)

	var (
		out  *SendMessageOutput
		conv *domain.Conversation
	)
	err := s.locks.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		conv, err = s.load(ctx, in.UserID)
		if err != nil {
			return err
		}

		stage := conv.State.StageName()
		started := s.now()
		res := s.machine.Advance(ctx, conv.State, in.Text)
		s.metrics.Turn(string(stage), res.Outcome.String(), s.now().Sub(started).Seconds())

		out = &SendMessageOutput{
			Reply:         res.Reply,
			Stage:         res.State.StageName(),
			QuestionCount: res.State.QuestionCount(),
			Outcome:       res.Outcome,
			Report:        res.Report,
		}

		switch res.Outcome {
		case assessment.Failed:
			log.Error("assessment turn failed", "stage", stage, "error", res.Err)
			return nil
		case assessment.Terminal:
			return nil
		}

		// A request that ended mid-turn keeps the stored state.
		if err := ctx.Err(); err != nil {
			log.Warn("request ended before the turn was saved", "error", err)
			return unavailable(err, in.UserID, "request ended before the turn was saved")
		}

		conv.State = res.State
		conv.UpdatedAt = s.now()
		if err := s.store.PutConversation(ctx, conv); err != nil {
			log.Error("failed to store conversation", "error", err)
			return unavailable(err, in.UserID, "failed to store conversation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("message handled",
		"stage", out.Stage,
		"question_count", out.QuestionCount,
		"outcome", out.Outcome.String(),
	)

	if out.Report != nil {
		s.finish(ctx, conv, *out.Report)
	}
	return out, nil
}

// GetTranscript returns the stored conversation for a user.
func (s *Service) GetTranscript(ctx context.Context, userID domain.UserID) (*domain.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, sessionKey(userID))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, notStarted(userID)
		}
		observability.LoggerFromContext(ctx).Error("failed to load conversation", "user_id", userID, "error", err)
		return nil, unavailable(err, userID, "failed to load conversation")
	}
	return conv, nil
}

func (s *Service) load(ctx context.Context, userID domain.UserID) (*domain.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, sessionKey(userID))
	switch {
	case err == nil:
		return conv, nil
	case errors.Is(err, domain.ErrSessionNotFound):
		if !s.autoStart {
			return nil, notStarted(userID)
		}
		_, conv = s.newConversation(userID, nil)
		s.metrics.SessionStarted()
		return conv, nil
	default:
		observability.LoggerFromContext(ctx).Error("failed to load conversation", "user_id", userID, "error", err)
		return nil, unavailable(err, userID, "failed to load conversation")
	}
}

func (s *Service) newConversation(userID domain.UserID, contact *domain.EmergencyContact) (string, *domain.Conversation) {
	reply, state := assessment.StartNewSession()
	now := s.now()
	return reply, &domain.Conversation{
		Key:              sessionKey(userID),
		UserID:           userID,
		State:            state,
		EmergencyContact: contact,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// finish archives the report and alerts the emergency contact. Both are
// best effort: the state is already saved, so they run detached from the
// request under their own timeout.
func (s *Service) finish(ctx context.Context, conv *domain.Conversation, rep domain.Report) {
	log := observability.LoggerFromContext(ctx).With("user_id", conv.UserID)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	s.metrics.Completed(string(rep.Condition), string(rep.Severity))

	if s.archive != nil {
		rec := &domain.ReportRecord{
			ID:         domain.ReportID(s.newID()),
			UserID:     conv.UserID,
			SessionKey: conv.Key,
			Condition:  rep.Condition,
			Score:      rep.Score,
			Severity:   rep.Severity,
			CreatedAt:  s.now(),
		}
		if err := s.archive.AppendReport(ctx, rec); err != nil {
			log.Warn("failed to archive report", "error", err)
		}
	}

	if rep.Severity != domain.SeveritySevere || s.notifier == nil {
		return
	}
	if conv.EmergencyContact == nil || conv.EmergencyContact.Email == "" {
		s.metrics.Notification("skipped")
		return
	}

	if err := s.notifier.NotifyEmergency(ctx, assessment.AlertFor(rep, *conv.EmergencyContact)); err != nil {
		s.metrics.Notification("failed")
		log.Warn("failed to notify emergency contact", "error", err)
		return
	}
	s.metrics.Notification("sent")
	log.Info("emergency contact notified")
}

func notStarted(userID domain.UserID) error {
	return oops.In("conversation").
		Code("session_not_started").
		With("user_id", userID).
		Wrapf(domain.ErrSessionNotStarted, "no session for user")
}

func unavailable(err error, userID domain.UserID, msg string) error {
	if !errors.Is(err, domain.ErrSessionUnavailable) {
		err = errors.Join(domain.ErrSessionUnavailable, err)
	}
	return oops.In("conversation").
		Code("session_unavailable").
		With("user_id", userID).
		Wrapf(err, "%s", msg)
}
