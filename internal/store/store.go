// Package store persists users, conversation turns, check-ins and
// per-user statistics. Two implementations exist: a Postgres-backed
// store used in production and an in-memory store used in tests and
// datastore-less runs. Both enforce the same policy: operations that
// reference a user fail with common.ErrNotFound when the user does not
// exist.
package store

import (
	"context"

	"mentor-api/internal/models"
)

// Order selects the presentation order of retrieved turns.
type Order int

const (
	// Chronological returns turns oldest first.
	Chronological Order = iota
	// ReverseChronological returns turns newest first.
	ReverseChronological
)

// ConversationStore persists ordered turns per user.
type ConversationStore interface {
	// AppendTurn records one immutable turn and returns its id.
	AppendTurn(ctx context.Context, userID, sender, content string) (int64, error)

	// RecentTurns returns up to limit turns for the user in the given
	// order. The per-user ordering key is (created_at, id), so two
	// appends in the same millisecond still have a defined order.
	RecentTurns(ctx context.Context, userID string, limit int, order Order) ([]models.Turn, error)

	// AllTurns returns the full conversation oldest first. A known user
	// with no turns yields an empty slice.
	AllTurns(ctx context.Context, userID string) ([]models.Turn, error)
}

// UserStore creates and looks up users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (string, error)
	UserExists(ctx context.Context, userID string) (bool, error)
}

// StatsStore records check-ins and reads per-user statistics.
type StatsStore interface {
	SaveCheckIn(ctx context.Context, checkIn *models.CheckIn) error
	Stats(ctx context.Context, userID string) (*models.UserStats, error)
}

// Store is the full persistence surface the service layer depends on.
type Store interface {
	ConversationStore
	UserStore
	StatsStore
}
