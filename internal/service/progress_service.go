package service

import (
	"context"
	"time"

	"learnstudio/internal/model"
	"learnstudio/internal/repository"

	"github.com/samber/oops"
)

// ProgressService tracks curriculum completion for the signed-in user
type ProgressService interface {
	GetProgress(ctx context.Context, userID string) ([]model.DayProgress, error)
	CompleteTask(ctx context.Context, userID string, req model.CompleteTaskRequest) (*model.DayProgress, error)
	CompleteDay(ctx context.Context, userID string, day int) error
}

type progressService struct {
	progressRepo repository.ProgressRepository
	now          func() time.Time
}

// NewProgressService creates a new ProgressService
func NewProgressService(progressRepo repository.ProgressRepository) ProgressService {
	return &progressService{progressRepo: progressRepo, now: time.Now}
}

func validDay(day int) error {
	if day < 1 || day > model.TotalDays {
		return ErrInvalidDay
	}
	return nil
}

func (s *progressService) GetProgress(ctx context.Context, userID string) ([]model.DayProgress, error) {
	progress, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("PROGRESS_FETCH_FAILED").With("user_id", userID).Wrap(err)
	}
	return progress, nil
}

func (s *progressService) CompleteTask(ctx context.Context, userID string, req model.CompleteTaskRequest) (*model.DayProgress, error) {
	if err := validDay(req.DayNumber); err != nil {
		return nil, err
	}
	progress, err := s.progressRepo.SetTask(ctx, userID, req.DayNumber, req.TaskID, req.Completed, s.now().UTC())
	if err != nil {
		return nil, oops.Code("PROGRESS_TASK_FAILED").With("user_id", userID).Wrap(err)
	}
	return progress, nil
}

func (s *progressService) CompleteDay(ctx context.Context, userID string, day int) error {
	if err := validDay(day); err != nil {
		return err
	}
	if err := s.progressRepo.CompleteDay(ctx, userID, day, s.now().UTC()); err != nil {
		return oops.Code("PROGRESS_DAY_FAILED").With("user_id", userID).Wrap(err)
	}
	return nil
}
