package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"learnstudio/internal/config"
	"learnstudio/internal/mail"
	"learnstudio/internal/metrics"
	"learnstudio/internal/model"
	"learnstudio/internal/repository"
	"learnstudio/internal/utils"

	"github.com/samber/oops"
)

// MailQueue accepts messages for background delivery
type MailQueue interface {
	Enqueue(msg mail.Message) bool
}

// ResetService runs the one-time code password reset flow.
// Per email the record moves from issued to used or expired; a new request replaces it.
type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, email, otp, newPassword string) error
}

type resetService struct {
	userRepo  repository.UserRepository
	resetRepo repository.ResetRepository
	hasher    *utils.PasswordHasher
	mailQueue MailQueue
	cfg       config.AuthConfig
	metrics   *metrics.Metrics
	now       func() time.Time
	newOTP    func() (string, error)
}

// NewResetService creates a new ResetService
func NewResetService(userRepo repository.UserRepository, resetRepo repository.ResetRepository, hasher *utils.PasswordHasher, mailQueue MailQueue, cfg config.AuthConfig, m *metrics.Metrics) ResetService {
	return &resetService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		hasher:    hasher,
		mailQueue: mailQueue,
		cfg:       cfg,
		metrics:   m,
		now:       time.Now,
		newOTP:    utils.GenerateOTP,
	}
}

// RequestReset answers the same way whether or not the account exists.
// Mail problems are logged and never returned.
func (s *resetService) RequestReset(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return oops.Code("RESET_LOOKUP_FAILED").Wrap(err)
	}
	if user == nil {
		s.metrics.AuthEvent("reset_request", "unknown_email")
		return nil
	}

	otp, err := s.newOTP()
	if err != nil {
		return oops.Code("RESET_OTP_FAILED").Wrap(err)
	}

	now := s.now().UTC()
	record := &model.PasswordReset{
		Email:     email,
		OTP:       otp,
		ExpiresAt: now.Add(s.cfg.OTPTTL),
		CreatedAt: now,
	}
	if err := s.resetRepo.Upsert(ctx, record); err != nil {
		return oops.Code("RESET_STORE_FAILED").Wrap(err)
	}

	body, err := mail.RenderReset(user.Name, otp, s.cfg.OTPTTL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render reset mail", "error", err)
	} else if !s.mailQueue.Enqueue(mail.Message{To: email, Subject: mail.ResetSubject, HTML: body}) {
		slog.WarnContext(ctx, "reset mail not queued", "user_id", user.ID)
	}

	s.metrics.AuthEvent("reset_request", "issued")
	return nil
}

// ConfirmReset checks, in order: an unused record exists, it has not expired,
// the code matches, the new password is long enough. The store then consumes
// the record atomically so only the first confirm succeeds.
func (s *resetService) ConfirmReset(ctx context.Context, email, otp, newPassword string) error {
	email = model.NormalizeEmail(email)
	now := s.now().UTC()

	record, err := s.resetRepo.FindByEmail(ctx, email)
	if err != nil {
		return oops.Code("RESET_LOOKUP_FAILED").Wrap(err)
	}
	if record == nil || record.Used {
		s.metrics.AuthEvent("reset_confirm", "no_request")
		return ErrNoActiveRequest
	}
	if record.IsExpired(now) {
		s.metrics.AuthEvent("reset_confirm", "expired")
		return ErrOTPExpired
	}
	if record.OTP != otp {
		s.metrics.AuthEvent("reset_confirm", "mismatch")
		return ErrOTPMismatch
	}
	if err := checkPasswordStrength(newPassword, s.cfg.MinPasswordLength); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.resetRepo.Consume(ctx, email, otp, now, hashed); err != nil {
		switch {
		case errors.Is(err, repository.ErrResetNotActive):
			s.metrics.AuthEvent("reset_confirm", "no_request")
			return ErrNoActiveRequest
		case errors.Is(err, repository.ErrNotFound):
			return ErrUserNotFound
		}
		return oops.Code("RESET_CONSUME_FAILED").Wrap(err)
	}

	s.metrics.AuthEvent("reset_confirm", "success")
	return nil
}
