package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"mentor-api/internal/common"
	appmetrics "mentor-api/internal/metrics"
	"mentor-api/internal/middleware/ratelimit"
	"mentor-api/internal/models"
	"mentor-api/internal/services"
)

// historyPageLimit bounds the history endpoint response.
const historyPageLimit = 100

const statsCacheTTL = 5 * time.Minute

type Handler struct {
	userService    *services.UserService
	checkInService *services.CheckInService
	chatService    *services.ChatService
	rateLimiter    *ratelimit.RateLimiter
	db             *sql.DB       // nil when running on the memory store
	redisClient    *redis.Client // nil disables caching
}

func NewHandler(
	userService *services.UserService,
	checkInService *services.CheckInService,
	chatService *services.ChatService,
	rateLimiter *ratelimit.RateLimiter,
	db *sql.DB,
	redisClient *redis.Client,
) *Handler {
	return &Handler{
		userService:    userService,
		checkInService: checkInService,
		chatService:    chatService,
		rateLimiter:    rateLimiter,
		db:             db,
		redisClient:    redisClient,
	}
}

func (h *Handler) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	dbStatus := "disabled"
	if h.db != nil {
		dbStatus = "healthy"
		if err := h.db.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	}

	redisStatus := "disabled"
	if h.redisClient != nil {
		redisStatus = "healthy"
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  dbStatus,
		Redis:     redisStatus,
	})
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID, err := h.userService.CreateUser(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, models.CreateUserResponse{Success: true, UserID: userID})
}

func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	appmetrics.ChatRequestsTotal.Inc()
	appmetrics.ActiveChatRequests.Inc()
	defer appmetrics.ActiveChatRequests.Dec()

	start := time.Now()
	defer func() {
		appmetrics.ChatDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.UserID != "" && !h.rateLimiter.IsAllowed(req.UserID) {
		appmetrics.RateLimitDroppedTotal.Inc()
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	}

	reply, err := h.chatService.HandleChatTurn(ctx, req.UserID, req.Message)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, models.ChatResponse{Success: true, Response: reply})
}

func (h *Handler) ChatHistory(c echo.Context) error {
	userID := c.Param("user_id")

	turns, err := h.chatService.History(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	if len(turns) > historyPageLimit {
		turns = turns[:historyPageLimit]
	}

	entries := make([]models.HistoryEntry, 0, len(turns))
	for _, t := range turns {
		entries = append(entries, models.HistoryEntry{
			Sender:    t.Sender,
			Content:   t.Content,
			Timestamp: t.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("user_id")

	cacheKey := "user_stats:" + userID
	if h.redisClient != nil {
		if cached, err := h.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			return c.JSONBlob(http.StatusOK, []byte(cached))
		}
	}

	stats, err := h.userService.Stats(ctx, userID)
	if err != nil {
		return httpError(err)
	}

	if h.redisClient != nil {
		if payload, err := json.Marshal(stats); err == nil {
			// Best-effort: a failed cache write only costs a DB read.
			_ = h.redisClient.Set(ctx, cacheKey, payload, statsCacheTTL).Err()
		}
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) CheckIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.checkInService.RecordCheckIn(ctx, &req); err != nil {
		return httpError(err)
	}

	if h.redisClient != nil {
		_ = h.redisClient.Del(ctx, "user_stats:"+req.UserID).Err()
	}

	return c.JSON(http.StatusOK, models.CheckInResponse{Success: true})
}

// httpError maps the service error taxonomy onto HTTP statuses.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, common.ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, common.ErrModelUnavailable):
		return echo.NewHTTPError(http.StatusInternalServerError, "model unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
