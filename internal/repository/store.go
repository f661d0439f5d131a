package repository

import (
	"context"
	"errors"
	"time"

	"learnstudio/internal/model"
)

var (
	// ErrDuplicateEmail is returned when the store's unique email constraint rejects a write
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned by updates that target a record that does not exist
	ErrNotFound = errors.New("record not found")
	// ErrResetNotActive is returned by Consume when no unused, unexpired record matches
	ErrResetNotActive = errors.New("no active password reset")
)

// UserRepository defines operations for user data.
// Find methods return (nil, nil) when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	UpdateEmail(ctx context.Context, id, email string, now time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error
	UpdateAvatar(ctx context.Context, id, avatar string, now time.Time) error
}

// ResetRepository stores one password reset record per email
type ResetRepository interface {
	Upsert(ctx context.Context, reset *model.PasswordReset) error
	FindByEmail(ctx context.Context, email string) (*model.PasswordReset, error)
	// Consume marks the matching record used and stores the new password hash.
	// Only one caller can consume a record; the rest get ErrResetNotActive.
	Consume(ctx context.Context, email, otp string, now time.Time, passwordHash string) error
}

// ProgressRepository stores per-day curriculum progress
type ProgressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.DayProgress, error)
	SetTask(ctx context.Context, userID string, day int, taskID string, completed bool, now time.Time) (*model.DayProgress, error)
	CompleteDay(ctx context.Context, userID string, day int, now time.Time) error
	SetDayCompletion(ctx context.Context, userID string, day int, completed bool, now time.Time) (*model.DayProgress, error)
}

// Store groups the repositories of one backend
type Store interface {
	Users() UserRepository
	Resets() ResetRepository
	Progress() ProgressRepository
	// Migrate brings the schema or indexes up to date
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
