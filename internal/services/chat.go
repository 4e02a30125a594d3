package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mentor-api/internal/common"
	appmetrics "mentor-api/internal/metrics"
	"mentor-api/internal/models"
	"mentor-api/internal/prompt"
	"mentor-api/internal/store"
)

// ModelProvider is the generative-language capability the chat service
// invokes. The Gemini client implements it; tests stub it.
type ModelProvider interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// Stage names the failure point of a chat turn.
type Stage string

const (
	StagePersistInbound  Stage = "persist-inbound"
	StageModelInvocation Stage = "model-invocation"
	StagePersistOutbound Stage = "persist-outbound"
)

// ChatService runs one chat exchange end to end: persist the inbound
// turn, assemble the bounded context, invoke the model, persist the
// outbound turn.
type ChatService struct {
	store     store.Store
	model     ModelProvider
	assembler *prompt.Assembler
	window    int
	timeout   time.Duration
	log       *slog.Logger
}

func NewChatService(s store.Store, model ModelProvider, assembler *prompt.Assembler, window int, timeout time.Duration, log *slog.Logger) *ChatService {
	return &ChatService{
		store:     s,
		model:     model,
		assembler: assembler,
		window:    window,
		timeout:   timeout,
		log:       log,
	}
}

// HandleChatTurn processes one exchange and returns the assistant's
// reply text.
//
// Failure semantics: validation failures happen before any write; a
// model failure leaves the inbound user turn persisted (the history
// keeps the unanswered message); a failure persisting the outbound turn
// does NOT return the generated text, so callers never act on state the
// history endpoints cannot confirm. No call is retried.
func (s *ChatService) HandleChatTurn(ctx context.Context, userID, message string) (string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: user_id and message required", common.ErrInvalidRequest)
	}

	inboundID, err := s.store.AppendTurn(ctx, userID, models.RoleUser, message)
	if err != nil {
		s.log.Error("chat turn failed", "stage", StagePersistInbound, "user_id", userID, "error", err)
		return "", fmt.Errorf("%s: %w", StagePersistInbound, err)
	}

	// One extra turn so the window stays full after the just-persisted
	// inbound turn is dropped; the new message travels separately.
	recent, err := s.store.RecentTurns(ctx, userID, s.window+1, store.Chronological)
	if err != nil {
		s.log.Error("chat turn failed", "stage", "load-context", "user_id", userID, "error", err)
		return "", fmt.Errorf("load context: %w", err)
	}
	prior := make([]models.Turn, 0, len(recent))
	for _, t := range recent {
		if t.ID != inboundID {
			prior = append(prior, t)
		}
	}

	p := s.assembler.Build(prior, message)

	modelCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	modelStart := time.Now()
	reply, err := s.model.Generate(modelCtx, p)
	appmetrics.ModelDurationSeconds.Observe(time.Since(modelStart).Seconds())
	if err != nil {
		appmetrics.ModelErrorsTotal.Inc()
		s.log.Error("chat turn failed", "stage", StageModelInvocation, "user_id", userID, "error", err)
		return "", fmt.Errorf("%s: %w: %v", StageModelInvocation, common.ErrModelUnavailable, err)
	}

	if _, err := s.store.AppendTurn(ctx, userID, models.RoleAssistant, reply); err != nil {
		s.log.Error("chat turn failed", "stage", StagePersistOutbound, "user_id", userID, "error", err)
		return "", fmt.Errorf("%s: %w", StagePersistOutbound, err)
	}

	s.log.Info("chat turn completed", "user_id", userID, "context_turns", len(prior))
	return reply, nil
}

// History returns the full conversation for a user, oldest first.
func (s *ChatService) History(ctx context.Context, userID string) ([]models.Turn, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id required", common.ErrInvalidRequest)
	}
	return s.store.AllTurns(ctx, userID)
}
