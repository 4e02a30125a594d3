package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mentor-api/internal/common"
	"mentor-api/internal/models"
)

// PostgresStore implements Store on a Postgres database reached through
// the pgx stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `INSERT INTO users (id, name, email, exam_target, preparation_stage, check_in_time)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`
	err := s.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.ExamTarget, user.PreparationStage, user.CheckInTime,
	).Scan(&user.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create user: %v", common.ErrUnavailable, err)
	}

	// Stats row created with the user. The two inserts are not wrapped
	// in a transaction; a lost stats row is repaired lazily by Stats.
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		user.ID,
	); err != nil {
		return "", fmt.Errorf("%w: failed to create user stats: %v", common.ErrUnavailable, err)
	}

	return user.ID, nil
}

func (s *PostgresStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check user: %v", common.ErrUnavailable, err)
	}
	return exists, nil
}

func (s *PostgresStore) AppendTurn(ctx context.Context, userID, sender, content string) (int64, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO conversations (user_id, sender, content) VALUES ($1, $2, $3) RETURNING id`,
		userID, sender, content,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to append turn: %v", common.ErrUnavailable, err)
	}
	return id, nil
}

func (s *PostgresStore) RecentTurns(ctx context.Context, userID string, limit int, order Order) ([]models.Turn, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	// Newest first with a bound, as stored; reversed below when the
	// caller wants chronological presentation.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, sender, content, created_at
		 FROM conversations
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query turns: %v", common.ErrUnavailable, err)
	}
	defer rows.Close()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}

	if order == Chronological {
		reverseTurns(turns)
	}
	return turns, nil
}

func (s *PostgresStore) AllTurns(ctx context.Context, userID string) ([]models.Turn, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, sender, content, created_at
		 FROM conversations
		 WHERE user_id = $1
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query turns: %v", common.ErrUnavailable, err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

func (s *PostgresStore) SaveCheckIn(ctx context.Context, checkIn *models.CheckIn) error {
	if err := s.requireUser(ctx, checkIn.UserID); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO check_ins (user_id, study_hours, subjects, mood_rating, challenges)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		checkIn.UserID, checkIn.StudyHours, checkIn.Subjects, checkIn.MoodRating, checkIn.Challenges,
	).Scan(&checkIn.ID, &checkIn.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to save check-in: %v", common.ErrUnavailable, err)
	}

	// Streak: consecutive calendar days. Same-day repeats keep the
	// streak, a one-day gap extends it, anything older restarts it.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_stats (user_id, total_check_ins, current_streak, last_check_in)
		 VALUES ($1, 1, 1, CURRENT_DATE)
		 ON CONFLICT (user_id) DO UPDATE SET
		   total_check_ins = user_stats.total_check_ins + 1,
		   current_streak = CASE
		     WHEN user_stats.last_check_in = CURRENT_DATE THEN user_stats.current_streak
		     WHEN user_stats.last_check_in = CURRENT_DATE - 1 THEN user_stats.current_streak + 1
		     ELSE 1
		   END,
		   last_check_in = CURRENT_DATE`,
		checkIn.UserID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update stats: %v", common.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	stats := &models.UserStats{UserID: userID}
	var lastCheckIn sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT total_check_ins, current_streak, last_check_in FROM user_stats WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalCheckIns, &stats.CurrentStreak, &lastCheckIn)
	if errors.Is(err, sql.ErrNoRows) {
		// Stats row missing (registration predates the table or the
		// second insert was lost): report the zero default.
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query stats: %v", common.ErrUnavailable, err)
	}
	if lastCheckIn.Valid {
		t := lastCheckIn.Time
		stats.LastCheckIn = &t
	}
	return stats, nil
}

func (s *PostgresStore) requireUser(ctx context.Context, userID string) error {
	exists, err := s.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return common.ErrNotFound
	}
	return nil
}

func scanTurns(rows *sql.Rows) ([]models.Turn, error) {
	turns := []models.Turn{}
	for rows.Next() {
		var t models.Turn
		var createdAt time.Time
		if err := rows.Scan(&t.ID, &t.UserID, &t.Sender, &t.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan turn: %v", common.ErrUnavailable, err)
		}
		t.CreatedAt = createdAt
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read turns: %v", common.ErrUnavailable, err)
	}
	return turns, nil
}

func reverseTurns(turns []models.Turn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
