package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/Mahaveer86619/mindguide/internal/adapters/http"
	"github.com/Mahaveer86619/mindguide/internal/adapters/llm"
	"github.com/Mahaveer86619/mindguide/internal/adapters/storage/memory"
	"github.com/Mahaveer86619/mindguide/internal/app/assessment"
	"github.com/Mahaveer86619/mindguide/internal/app/conversation"
	"github.com/Mahaveer86619/mindguide/internal/app/reports"
	"github.com/Mahaveer86619/mindguide/internal/domain"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	archive := memory.NewReportStore()
	machine := assessment.NewMachine(assessment.NewGenerator(llm.NewMockLLM()))
	convSvc := conversation.NewService(machine, memory.NewConversationStore(), conversation.WithArchive(archive))

	return httpadapter.NewServer(convSvc, reports.NewService(archive), httpadapter.Options{})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestChatRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/chat/start", `{"user_id":"u1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	start := decode(t, w)
	assert.Equal(t, "ai", start["sender"])
	assert.Equal(t, "start", start["stage"])
	assert.Contains(t, start["message"], "Welcome to MindGuide AI!")

	w = do(t, srv, http.MethodPost, "/chat/message", `{"user_id":"u1","message":"2"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	msg := decode(t, w)
	assert.Equal(t, "assessment", msg["stage"])
	assert.Equal(t, float64(0), msg["question_count"])
	assert.Contains(t, msg["message"], "Question 1/5:")

	for i := 0; i < 5; i++ {
		w = do(t, srv, http.MethodPost, "/chat/message", `{"user_id":"u1","message":"no"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	done := decode(t, w)
	assert.Equal(t, "done", done["stage"])
	report, ok := done["report"].(map[string]any)
	require.True(t, ok, "report expected on the final turn")
	assert.Equal(t, float64(0), report["score"])
	assert.Equal(t, "low", report["severity"])

	w = do(t, srv, http.MethodGet, "/chat/u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	tr := decode(t, w)
	assert.Equal(t, "done", tr["stage"])
	assert.Equal(t, "anxiety", tr["condition"])
	history := tr["history"].([]any)
	assert.Len(t, history, 13)
	assert.Equal(t, "ai", history[0].(map[string]any)["sender"])
	assert.Equal(t, "user", history[1].(map[string]any)["sender"])

	w = do(t, srv, http.MethodGet, "/users/u1/reports?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	reps := decode(t, w)["reports"].([]any)
	require.Len(t, reps, 1)
	assert.Equal(t, "anxiety", reps[0].(map[string]any)["condition"])
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name, path, body, want string
	}{
		{"bad json", "/chat/start", `{`, "invalid JSON body"},
		{"missing user", "/chat/start", `{}`, "user_id is required"},
		{"bad contact email", "/chat/start", `{"user_id":"u1","emergency_contact":{"name":"A","email":"nope"}}`, "email must be a valid e-mail address"},
		{"missing message", "/chat/message", `{"user_id":"u1"}`, "message is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, decode(t, w)["error"])
		})
	}

	w := do(t, srv, http.MethodGet, "/users/u1/reports?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlankMessageIsRepromptedAndRecorded(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/chat/start", `{"user_id":"u1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, srv, http.MethodPost, "/chat/message", `{"user_id":"u1","message":"   "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	msg := decode(t, w)
	assert.Equal(t, "start", msg["stage"])
	assert.Contains(t, msg["message"], "1, 2, or 3")

	w = do(t, srv, http.MethodGet, "/chat/u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)["history"].([]any)
	require.Len(t, history, 2)
	assert.Equal(t, map[string]any{"sender": "user", "message": "   "}, history[1])
}

func TestMessageWithoutSessionIs404(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/chat/message", `{"user_id":"ghost","message":"1"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodGet, "/chat/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type downStore struct{}

func (downStore) GetConversation(context.Context, domain.SessionKey) (*domain.Conversation, error) {
	return nil, errors.New("connection refused")
}

func (downStore) PutConversation(context.Context, *domain.Conversation) error {
	return errors.New("connection refused")
}

func TestStoreOutageIs503(t *testing.T) {
	convSvc := conversation.NewService(assessment.NewMachine(nil), downStore{})
	srv := httpadapter.NewServer(convSvc, reports.NewService(nil), httpadapter.Options{})

	w := do(t, srv, http.MethodPost, "/chat/start", `{"user_id":"u1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, srv, http.MethodPost, "/chat/message", `{"user_id":"u1","message":"1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodOptions, "/chat/start", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
