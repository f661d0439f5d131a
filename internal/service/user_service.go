package service

import (
	"context"
	"errors"
	"time"

	"learnstudio/internal/avatar"
	"learnstudio/internal/config"
	"learnstudio/internal/model"
	"learnstudio/internal/repository"
	"learnstudio/internal/utils"

	"github.com/samber/oops"
)

// UserService changes the signed-in user's own account
type UserService interface {
	UpdateEmail(ctx context.Context, user *model.User, currentPassword, newEmail string) (*model.User, error)
	UpdatePassword(ctx context.Context, user *model.User, currentPassword, newPassword string) error
	UpdateAvatar(ctx context.Context, user *model.User, dataURL string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	hasher   *utils.PasswordHasher
	avatars  avatar.Storage
	cfg      config.AuthConfig
	now      func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, hasher *utils.PasswordHasher, avatars avatar.Storage, cfg config.AuthConfig) UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
		avatars:  avatars,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *userService) UpdateEmail(ctx context.Context, user *model.User, currentPassword, newEmail string) (*model.User, error) {
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	email := model.NormalizeEmail(newEmail)
	if email == user.Email {
		return nil, ErrSameEmail
	}

	owner, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, oops.Code("EMAIL_LOOKUP_FAILED").Wrap(err)
	}
	if owner != nil {
		return nil, ErrEmailTaken
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateEmail(ctx, user.ID, email, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, oops.Code("EMAIL_UPDATE_FAILED").With("user_id", user.ID).Wrap(err)
	}

	updated := *user
	updated.Email = email
	updated.UpdatedAt = now
	return &updated, nil
}

func (s *userService) UpdatePassword(ctx context.Context, user *model.User, currentPassword, newPassword string) error {
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}
	if err := checkPasswordStrength(newPassword, s.cfg.MinPasswordLength); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return oops.Code("PASSWORD_UPDATE_FAILED").With("user_id", user.ID).Wrap(err)
	}
	return nil
}

func (s *userService) UpdateAvatar(ctx context.Context, user *model.User, dataURL string) (*model.User, error) {
	stored, err := s.avatars.Store(ctx, user.ID, dataURL)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateAvatar(ctx, user.ID, stored, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, oops.Code("AVATAR_UPDATE_FAILED").With("user_id", user.ID).Wrap(err)
	}

	updated := *user
	updated.Avatar = &stored
	updated.UpdatedAt = now
	return &updated, nil
}
