package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Mahaveer86619/mindguide/internal/app/conversation"
	"github.com/Mahaveer86619/mindguide/internal/app/reports"
	"github.com/Mahaveer86619/mindguide/internal/domain"
	"github.com/Mahaveer86619/mindguide/internal/observability"
)

type Server struct {
	svc      *conversation.Service
	reports  *reports.Service
	validate *validator.Validate
}

type Options struct {
	// Bounds each request, including the completion call. Zero disables it.
	RequestTimeout time.Duration
}

func NewServer(svc *conversation.Service, reportsSvc *reports.Service, opts Options) http.Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Server{
		svc:      svc,
		reports:  reportsSvc,
		validate: validate,
	}

	r := chi.NewRouter()
	r.Use(withRequestID, withLogging, withRecover, withCORS)
	if opts.RequestTimeout > 0 {
		r.Use(withTimeout(opts.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/chat", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Post("/message", s.handleMessage)
		r.Get("/{userID}", s.handleTranscript)
	})
	r.Get("/users/{userID}/reports", s.handleListReports)

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type emergencyContactRequest struct {
	Name  string `json:"name" validate:"max=128"`
	Email string `json:"email" validate:"required,email"`
}

type startRequest struct {
	UserID           string                   `json:"user_id" validate:"required,max=128"`
	EmergencyContact *emergencyContactRequest `json:"emergency_contact,omitempty"`
}

// Message is a pointer so a blank message reaches the assessment and is
// re-prompted there, while a missing one is a bad request.
type messageRequest struct {
	UserID  string  `json:"user_id" validate:"required,max=128"`
	Message *string `json:"message" validate:"required,max=2000"`
}

type chatResponse struct {
	Sender        string         `json:"sender"`
	Message       string         `json:"message"`
	Stage         string         `json:"stage"`
	QuestionCount *int           `json:"question_count,omitempty"`
	Report        *domain.Report `json:"report,omitempty"`
}

type turnResponse struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type transcriptResponse struct {
	UserID        string         `json:"user_id"`
	Stage         string         `json:"stage"`
	Condition     string         `json:"condition,omitempty"`
	QuestionCount int            `json:"question_count"`
	History       []turnResponse `json:"history"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type reportsResponse struct {
	Reports []*domain.ReportRecord `json:"reports"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !s.decode(w, r, &req) {
		return
	}

	in := conversation.StartSessionInput{UserID: domain.UserID(req.UserID)}
	if req.EmergencyContact != nil {
		in.EmergencyContact = &domain.EmergencyContact{
			Name:  req.EmergencyContact.Name,
			Email: req.EmergencyContact.Email,
		}
	}

	out, err := s.svc.StartSession(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, chatResponse{
		Sender:  "ai",
		Message: out.Reply,
		Stage:   string(out.Conversation.State.StageName()),
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.svc.SendMessage(r.Context(), conversation.SendMessageInput{
		UserID: domain.UserID(req.UserID),
		Text:   *req.Message,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	count := out.QuestionCount
	writeJSON(w, http.StatusOK, chatResponse{
		Sender:        "ai",
		Message:       out.Reply,
		Stage:         string(out.Stage),
		QuestionCount: &count,
		Report:        out.Report,
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	conv, err := s.svc.GetTranscript(r.Context(), domain.UserID(userID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTranscriptResponse(conv))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := s.reports.ListUserReports(r.Context(), domain.UserID(userID), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reportsResponse{Reports: recs})
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toTranscriptResponse(c *domain.Conversation) transcriptResponse {
	resp := transcriptResponse{
		UserID:        string(c.UserID),
		Stage:         string(c.State.StageName()),
		QuestionCount: c.State.QuestionCount(),
		History:       make([]turnResponse, 0, len(c.State.History)),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if cond, ok := c.State.ConditionOf(); ok {
		resp.Condition = string(cond)
	}
	for _, t := range c.State.History {
		resp.History = append(resp.History, turnResponse{
			Sender:  senderOf(t.Role),
			Message: t.Text,
		})
	}
	return resp
}

func senderOf(role domain.Role) string {
	if role == domain.RoleModel {
		return "ai"
	}
	return "user"
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

// decode reads and validates a JSON body; on failure it writes the 400.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			badRequest(w, describe(verrs[0]))
			return false
		}
		badRequest(w, "invalid request")
		return false
	}
	return true
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid e-mail address"
	case "max":
		return field + " is too long"
	}
	return field + " is invalid"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotStarted):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "session not started",
		})
	case errors.Is(err, domain.ErrSessionUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "session temporarily unavailable",
		})
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}
