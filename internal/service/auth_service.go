package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"learnstudio/internal/config"
	"learnstudio/internal/metrics"
	"learnstudio/internal/model"
	"learnstudio/internal/repository"
	"learnstudio/internal/utils"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// AuthService registers users, runs both login portals and resolves bearer tokens
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	AdminLogin(ctx context.Context, email, password, adminCode string) (*model.User, string, error)
	ResolveUser(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
	hasher   *utils.PasswordHasher
	cfg      config.AuthConfig
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, hasher *utils.PasswordHasher, cfg config.AuthConfig, m *metrics.Metrics) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
		hasher:   hasher,
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
	}
}

func checkPasswordStrength(password string, minLength int) error {
	if len(password) < minLength {
		return fmt.Errorf("%w: use at least %d characters", ErrWeakPassword, minLength)
	}
	return nil
}

func adminCodeMatches(given, want string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}

// Register creates an intern, or an admin when a valid admin code is supplied and the quota allows.
// Account conflicts are reported before password strength.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error) {
	email := model.NormalizeEmail(req.Email)

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", oops.Code("REGISTER_LOOKUP_FAILED").Wrap(err)
	}
	if existingUser != nil {
		s.metrics.AuthEvent("register", "email_taken")
		return nil, "", ErrEmailTaken
	}

	role := model.RoleIntern
	if req.AdminCode != nil && *req.AdminCode != "" {
		if !adminCodeMatches(*req.AdminCode, s.cfg.AdminCode) {
			s.metrics.AuthEvent("register", "bad_admin_code")
			return nil, "", ErrBadAdminCode
		}
		// check-then-insert: concurrent registrations may briefly exceed the quota
		admins, err := s.userRepo.CountByRole(ctx, model.RoleAdmin)
		if err != nil {
			return nil, "", oops.Code("REGISTER_ADMIN_COUNT_FAILED").Wrap(err)
		}
		if admins >= s.cfg.MaxAdmins {
			s.metrics.AuthEvent("register", "admin_quota")
			return nil, "", ErrAdminQuotaExceeded
		}
		role = model.RoleAdmin
	}

	if err := checkPasswordStrength(req.Password, s.cfg.MinPasswordLength); err != nil {
		return nil, "", err
	}

	var course *string
	if role == model.RoleIntern {
		c := model.DefaultCourse
		if req.Course != nil && strings.TrimSpace(*req.Course) != "" {
			c = strings.TrimSpace(*req.Course)
		}
		course = &c
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		Course:       course,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.metrics.AuthEvent("register", "email_taken")
			return nil, "", ErrEmailTaken
		}
		return nil, "", oops.Code("REGISTER_CREATE_FAILED").Wrap(err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		slog.ErrorContext(ctx, "user created but token generation failed", "user_id", user.ID, "error", err)
		return nil, "", oops.Code("TOKEN_ISSUE_FAILED").Wrap(err)
	}

	if role == model.RoleAdmin {
		slog.InfoContext(ctx, "admin account registered", "user_id", user.ID)
	}
	s.metrics.AuthEvent("register", "success")
	return user, token, nil
}

// authenticate never tells a missing account apart from a wrong password
func (s *authService) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return nil, oops.Code("LOGIN_LOOKUP_FAILED").Wrap(err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login is the intern portal. Admins are sent to the admin portal rather than let in.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		s.metrics.AuthEvent("login", "invalid_credentials")
		return nil, "", err
	}
	if user.Role != model.RoleIntern {
		s.metrics.AuthEvent("login", "wrong_portal")
		return nil, "", ErrWrongPortal
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", oops.Code("TOKEN_ISSUE_FAILED").Wrap(err)
	}
	s.metrics.AuthEvent("login", "success")
	return user, token, nil
}

// AdminLogin checks the admin code before touching credentials
func (s *authService) AdminLogin(ctx context.Context, email, password, adminCode string) (*model.User, string, error) {
	if !adminCodeMatches(adminCode, s.cfg.AdminCode) {
		s.metrics.AuthEvent("admin_login", "bad_admin_code")
		return nil, "", ErrBadAdminCode
	}

	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		s.metrics.AuthEvent("admin_login", "invalid_credentials")
		return nil, "", err
	}
	if user.Role != model.RoleAdmin {
		s.metrics.AuthEvent("admin_login", "not_admin")
		return nil, "", ErrNotAdmin
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", oops.Code("TOKEN_ISSUE_FAILED").Wrap(err)
	}
	s.metrics.AuthEvent("admin_login", "success")
	return user, token, nil
}

// ResolveUser validates the token and loads the user fresh from the store on every call
func (s *authService) ResolveUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, oops.Code("RESOLVE_USER_FAILED").With("user_id", claims.UserID).Wrap(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
