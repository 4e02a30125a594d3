package services

import (
	"context"
	"fmt"
	"strings"

	"mentor-api/internal/common"
	"mentor-api/internal/models"
	"mentor-api/internal/store"
)

// Registration defaults applied when the caller omits optional fields.
const (
	DefaultExamTarget       = "NEET PG"
	DefaultPreparationStage = "Beginner"
	DefaultCheckInTime      = "07:00"
)

type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

// CreateUser registers a user. Name and email are required; optional
// fields fall back to the registration defaults. The stats record is
// created alongside the user.
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return "", fmt.Errorf("%w: name and email required", common.ErrInvalidRequest)
	}

	user := &models.User{
		Name:             req.Name,
		Email:            req.Email,
		ExamTarget:       req.ExamTarget,
		PreparationStage: req.PreparationStage,
		CheckInTime:      req.CheckInTime,
	}
	if user.ExamTarget == "" {
		user.ExamTarget = DefaultExamTarget
	}
	if user.PreparationStage == "" {
		user.PreparationStage = DefaultPreparationStage
	}
	if user.CheckInTime == "" {
		user.CheckInTime = DefaultCheckInTime
	}

	return s.store.CreateUser(ctx, user)
}

func (s *UserService) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id required", common.ErrInvalidRequest)
	}
	return s.store.Stats(ctx, userID)
}

type CheckInService struct {
	store store.Store
}

func NewCheckInService(s store.Store) *CheckInService {
	return &CheckInService{store: s}
}

// RecordCheckIn saves a daily check-in and updates the user's stats
// (total count, streak, last check-in date).
func (s *CheckInService) RecordCheckIn(ctx context.Context, req *models.CheckInRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: user_id required", common.ErrInvalidRequest)
	}

	checkIn := &models.CheckIn{
		UserID:     req.UserID,
		StudyHours: req.StudyHours,
		Subjects:   req.Subjects,
		MoodRating: req.MoodRating,
		Challenges: req.Challenges,
	}
	return s.store.SaveCheckIn(ctx, checkIn)
}
