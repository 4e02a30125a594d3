package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentor-api/internal/middleware/ratelimit"
	"mentor-api/internal/models"
	"mentor-api/internal/prompt"
	"mentor-api/internal/services"
	"mentor-api/internal/store"
)

type stubModel struct {
	reply string
	err   error
}

func (m *stubModel) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func newTestHandler(model services.ModelProvider) (*Handler, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	assembler := prompt.NewAssembler(prompt.ModeStructured, 20, "persona")
	chatSvc := services.NewChatService(mem, model, assembler, 20, time.Second, log)
	h := NewHandler(
		services.NewUserService(mem),
		services.NewCheckInService(mem),
		chatSvc,
		ratelimit.NewRateLimiter(100),
		nil,
		nil,
	)
	return h, mem
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, path, body string, pathParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	err := h(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func createUser(t *testing.T, h *Handler) string {
	t.Helper()
	rec := doJSON(t, h.CreateUser, http.MethodPost, "/user/create",
		`{"name":"Asha","email":"asha-`+t.Name()+`@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.CreateUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.UserID)
	return resp.UserID
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler(&stubModel{reply: "ok"})

	rec := doJSON(t, h.HealthCheck, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestCreateUser_MissingFields(t *testing.T) {
	h, mem := newTestHandler(&stubModel{reply: "ok"})

	rec := doJSON(t, h.CreateUser, http.MethodPost, "/user/create", `{"email":"x@example.com"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.CreateUser, http.MethodPost, "/user/create", `{"name":"X"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No user record was created on validation failure.
	exists, err := mem.UserExists(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestChatFlow(t *testing.T) {
	h, _ := newTestHandler(&stubModel{reply: "Great job! What subject?"})
	userID := createUser(t, h)

	rec := doJSON(t, h.Chat, http.MethodPost, "/chat",
		`{"user_id":"`+userID+`","message":"Studied 6 hours today"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var chatResp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chatResp))
	assert.True(t, chatResp.Success)
	assert.Equal(t, "Great job! What subject?", chatResp.Response)

	rec = doJSON(t, h.ChatHistory, http.MethodGet, "/chat/history/"+userID, "", map[string]string{"user_id": userID})
	require.Equal(t, http.StatusOK, rec.Code)

	var history []models.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Sender)
	assert.Equal(t, "Studied 6 hours today", history[0].Content)
	assert.Equal(t, "assistant", history[1].Sender)
	assert.Equal(t, "Great job! What subject?", history[1].Content)
}

func TestChat_MissingFields(t *testing.T) {
	h, _ := newTestHandler(&stubModel{reply: "ok"})

	rec := doJSON(t, h.Chat, http.MethodPost, "/chat", `{"message":"hi"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_UnknownUser(t *testing.T) {
	h, _ := newTestHandler(&stubModel{reply: "ok"})

	rec := doJSON(t, h.Chat, http.MethodPost, "/chat", `{"user_id":"ghost","message":"hi"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChat_ModelFailureKeepsUserTurn(t *testing.T) {
	h, mem := newTestHandler(&stubModel{err: errors.New("timeout")})
	userID := createUser(t, h)

	rec := doJSON(t, h.Chat, http.MethodPost, "/chat",
		`{"user_id":"`+userID+`","message":"Studied 6 hours today"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	turns, err := mem.AllTurns(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, models.RoleUser, turns[0].Sender)
}

func TestChat_RateLimited(t *testing.T) {
	mem := store.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	assembler := prompt.NewAssembler(prompt.ModeStructured, 20, "p")
	chatSvc := services.NewChatService(mem, &stubModel{reply: "ok"}, assembler, 20, time.Second, log)
	h := NewHandler(
		services.NewUserService(mem),
		services.NewCheckInService(mem),
		chatSvc,
		ratelimit.NewRateLimiter(1),
		nil,
		nil,
	)
	userID := createUser(t, h)

	body := `{"user_id":"` + userID + `","message":"hi"}`
	rec := doJSON(t, h.Chat, http.MethodPost, "/chat", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.Chat, http.MethodPost, "/chat", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHistory_EmptyForNewUser(t *testing.T) {
	h, _ := newTestHandler(&stubModel{reply: "ok"})
	userID := createUser(t, h)

	rec := doJSON(t, h.ChatHistory, http.MethodGet, "/chat/history/"+userID, "", map[string]string{"user_id": userID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestStatsAndCheckIn(t *testing.T) {
	h, _ := newTestHandler(&stubModel{reply: "ok"})
	userID := createUser(t, h)

	rec := doJSON(t, h.GetStats, http.MethodGet, "/stats/"+userID, "", map[string]string{"user_id": userID})
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.UserStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.TotalCheckIns)

	rec = doJSON(t, h.CheckIn, http.MethodPost, "/checkin",
		`{"user_id":"`+userID+`","study_hours":6,"subjects":"Anatomy","mood_rating":4,"challenges":"none"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.GetStats, http.MethodGet, "/stats/"+userID, "", map[string]string{"user_id": userID})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalCheckIns)
}

func TestStats_UnknownUser(t *testing.T) {
	h, _ := newTestHandler(&stubModel{reply: "ok"})

	rec := doJSON(t, h.GetStats, http.MethodGet, "/stats/ghost", "", map[string]string{"user_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
