package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mentor-api/internal/common"
	"mentor-api/internal/models"
)

// MemoryStore implements Store with mutex-guarded maps. It backs unit
// tests and datastore-less runs of the service.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	emails   map[string]struct{}
	turns    map[string][]models.Turn
	checkIns map[string][]models.CheckIn
	stats    map[string]models.UserStats
	nextTurn int64
	nextCI   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		emails:   make(map[string]struct{}),
		turns:    make(map[string][]models.Turn),
		checkIns: make(map[string][]models.CheckIn),
		stats:    make(map[string]models.UserStats),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return "", common.ErrUnavailable
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()

	s.users[user.ID] = *user
	s.emails[user.Email] = struct{}{}
	s.stats[user.ID] = models.UserStats{UserID: user.ID}
	return user.ID, nil
}

func (s *MemoryStore) UserExists(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}

func (s *MemoryStore) AppendTurn(ctx context.Context, userID, sender, content string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return 0, common.ErrNotFound
	}

	// The counter breaks ties between appends that land on the same
	// timestamp, keeping the (CreatedAt, ID) order strict.
	s.nextTurn++
	turn := models.Turn{
		ID:        s.nextTurn,
		UserID:    userID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.turns[userID] = append(s.turns[userID], turn)
	return turn.ID, nil
}

func (s *MemoryStore) RecentTurns(ctx context.Context, userID string, limit int, order Order) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, common.ErrNotFound
	}

	all := s.turns[userID]
	if limit > len(all) {
		limit = len(all)
	}

	// Copy the tail so the caller holds a snapshot, not live state.
	recent := make([]models.Turn, limit)
	copy(recent, all[len(all)-limit:])

	if order == ReverseChronological {
		reverseTurns(recent)
	}
	return recent, nil
}

func (s *MemoryStore) AllTurns(ctx context.Context, userID string) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, common.ErrNotFound
	}

	all := s.turns[userID]
	out := make([]models.Turn, len(all))
	copy(out, all)
	return out, nil
}

func (s *MemoryStore) SaveCheckIn(ctx context.Context, checkIn *models.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[checkIn.UserID]; !ok {
		return common.ErrNotFound
	}

	s.nextCI++
	checkIn.ID = s.nextCI
	checkIn.CreatedAt = time.Now()
	s.checkIns[checkIn.UserID] = append(s.checkIns[checkIn.UserID], *checkIn)

	stats := s.stats[checkIn.UserID]
	stats.UserID = checkIn.UserID
	stats.TotalCheckIns++
	today := truncateToDay(checkIn.CreatedAt)
	switch {
	case stats.LastCheckIn == nil:
		stats.CurrentStreak = 1
	case truncateToDay(*stats.LastCheckIn).Equal(today):
		// same-day repeat keeps the streak
	case truncateToDay(*stats.LastCheckIn).Equal(today.AddDate(0, 0, -1)):
		stats.CurrentStreak++
	default:
		stats.CurrentStreak = 1
	}
	stats.LastCheckIn = &today
	s.stats[checkIn.UserID] = stats
	return nil
}

func (s *MemoryStore) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, common.ErrNotFound
	}

	stats := s.stats[userID]
	stats.UserID = userID
	return &stats, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
