package service

import (
	"sync"
	"time"

	"learnstudio/internal/config"
	"learnstudio/internal/mail"
	"learnstudio/internal/repository"
	"learnstudio/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const testAdminCode = "ADMIN-CODE"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeMailQueue struct {
	mu   sync.Mutex
	msgs []mail.Message
	full bool
}

func (q *fakeMailQueue) Enqueue(msg mail.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.msgs = append(q.msgs, msg)
	return true
}

func (q *fakeMailQueue) sent() []mail.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]mail.Message(nil), q.msgs...)
}

type fixture struct {
	store  *repository.MemoryStore
	clock  *testClock
	jwt    *utils.JWTUtil
	hasher *utils.PasswordHasher
	cfg    config.AuthConfig
	mail   *fakeMailQueue
	auth   *authService
	users  *userService
	resets *resetService
}

func newFixture() *fixture {
	clock := newTestClock()
	cfg := config.AuthConfig{
		JWTSecret:         "test-secret",
		TokenTTL:          7 * 24 * time.Hour,
		AdminCode:         testAdminCode,
		MaxAdmins:         3,
		BcryptCost:        bcrypt.MinCost,
		OTPTTL:            10 * time.Minute,
		MinPasswordLength: 6,
	}
	f := &fixture{
		store:  repository.NewMemoryStore(),
		clock:  clock,
		jwt:    utils.NewJWTUtil(cfg.JWTSecret, cfg.TokenTTL).WithClock(clock.Now),
		hasher: utils.NewPasswordHasher(cfg.BcryptCost),
		cfg:    cfg,
		mail:   &fakeMailQueue{},
	}

	f.auth = NewAuthService(f.store.Users(), f.jwt, f.hasher, cfg, nil).(*authService)
	f.auth.now = clock.Now

	f.users = NewUserService(f.store.Users(), f.hasher, nil, cfg).(*userService)
	f.users.now = clock.Now

	f.resets = NewResetService(f.store.Users(), f.store.Resets(), f.hasher, f.mail, cfg, nil).(*resetService)
	f.resets.now = clock.Now
	return f
}

func strPtr(s string) *string { return &s }
