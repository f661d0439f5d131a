package service

import (
	"context"
	"log/slog"
	"time"

	"learnstudio/internal/model"
	"learnstudio/internal/repository"

	"github.com/samber/oops"
)

// AdminService backs the admin dashboard. Callers must already have checked the admin role.
type AdminService interface {
	ListInterns(ctx context.Context) ([]model.InternSummary, error)
	UserProgress(ctx context.Context, userID string) (*model.UserProgress, error)
	OverrideDay(ctx context.Context, actor *model.User, userID string, day int, completed bool) (*model.DayProgress, error)
}

type adminService struct {
	userRepo     repository.UserRepository
	progressRepo repository.ProgressRepository
	now          func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(userRepo repository.UserRepository, progressRepo repository.ProgressRepository) AdminService {
	return &adminService{userRepo: userRepo, progressRepo: progressRepo, now: time.Now}
}

func (s *adminService) ListInterns(ctx context.Context) ([]model.InternSummary, error) {
	interns, err := s.userRepo.ListByRole(ctx, model.RoleIntern)
	if err != nil {
		return nil, oops.Code("ADMIN_LIST_FAILED").Wrap(err)
	}

	summaries := make([]model.InternSummary, 0, len(interns))
	for i := range interns {
		progress, err := s.progressRepo.ListByUser(ctx, interns[i].ID)
		if err != nil {
			return nil, oops.Code("ADMIN_LIST_FAILED").With("user_id", interns[i].ID).Wrap(err)
		}
		completed := 0
		for _, p := range progress {
			if p.IsCompleted {
				completed++
			}
		}
		summaries = append(summaries, model.InternSummary{
			PublicUser:    interns[i].Public(),
			Progress:      progress,
			CompletedDays: completed,
			TotalDays:     model.TotalDays,
		})
	}
	return summaries, nil
}

func (s *adminService) UserProgress(ctx context.Context, userID string) (*model.UserProgress, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, oops.Code("ADMIN_USER_FAILED").With("user_id", userID).Wrap(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	progress, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("ADMIN_USER_FAILED").With("user_id", userID).Wrap(err)
	}
	return &model.UserProgress{User: user.Public(), Progress: progress}, nil
}

func (s *adminService) OverrideDay(ctx context.Context, actor *model.User, userID string, day int, completed bool) (*model.DayProgress, error) {
	if err := validDay(day); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, oops.Code("ADMIN_OVERRIDE_FAILED").With("user_id", userID).Wrap(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Role != model.RoleIntern {
		return nil, ErrNotIntern
	}

	progress, err := s.progressRepo.SetDayCompletion(ctx, userID, day, completed, s.now().UTC())
	if err != nil {
		return nil, oops.Code("ADMIN_OVERRIDE_FAILED").With("user_id", userID).Wrap(err)
	}

	slog.InfoContext(ctx, "curriculum day overridden",
		"admin_id", actor.ID, "user_id", userID, "day_number", day, "is_completed", completed)
	return progress, nil
}
