package models

import (
	"time"
)

// Sender roles stored on a conversation turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type User struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Email            string    `json:"email" db:"email"`
	ExamTarget       string    `json:"exam_target" db:"exam_target"`
	PreparationStage string    `json:"preparation_stage" db:"preparation_stage"`
	CheckInTime      string    `json:"check_in_time" db:"check_in_time"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Turn is one immutable message in a user's conversation. Total order
// per user is (CreatedAt, ID).
type Turn struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Sender    string    `json:"sender" db:"sender"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}

type CheckIn struct {
	ID         int64     `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	StudyHours float64   `json:"study_hours" db:"study_hours"`
	Subjects   string    `json:"subjects" db:"subjects"`
	MoodRating int       `json:"mood_rating" db:"mood_rating"`
	Challenges string    `json:"challenges" db:"challenges"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type UserStats struct {
	UserID        string     `json:"user_id"`
	TotalCheckIns int        `json:"total_check_ins"`
	CurrentStreak int        `json:"current_streak"`
	LastCheckIn   *time.Time `json:"last_check_in,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
}

type CreateUserRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	ExamTarget       string `json:"exam_target"`
	PreparationStage string `json:"preparation_stage"`
	CheckInTime      string `json:"check_in_time"`
}

type CreateUserResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
}

type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// HistoryEntry is the wire form of a Turn on the history endpoint.
type HistoryEntry struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type CheckInRequest struct {
	UserID     string  `json:"user_id"`
	StudyHours float64 `json:"study_hours"`
	Subjects   string  `json:"subjects"`
	MoodRating int     `json:"mood_rating"`
	Challenges string  `json:"challenges"`
}

type CheckInResponse struct {
	Success bool `json:"success"`
}
