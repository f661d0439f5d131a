package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"learnstudio/internal/model"

	"github.com/google/uuid"
)

type progressKey struct {
	userID string
	day    int
}

// MemoryStore keeps everything in process memory. It enforces the same email
// uniqueness and single-use reset semantics as the database stores.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]model.User // by id
	emails   map[string]string     // email -> id
	resets   map[string]model.PasswordReset
	progress map[progressKey]model.DayProgress
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]model.User),
		emails:   make(map[string]string),
		resets:   make(map[string]model.PasswordReset),
		progress: make(map[progressKey]model.DayProgress),
	}
}

func (s *MemoryStore) Users() UserRepository         { return memoryUsers{s} }
func (s *MemoryStore) Resets() ResetRepository       { return memoryResets{s} }
func (s *MemoryStore) Progress() ProgressRepository { return memoryProgress{s} }

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Ping(context.Context) error    { return nil }
func (s *MemoryStore) Close(context.Context) error   { return nil }

func cloneUser(u model.User) *model.User {
	if u.Course != nil {
		course := *u.Course
		u.Course = &course
	}
	if u.Avatar != nil {
		avatar := *u.Avatar
		u.Avatar = &avatar
	}
	return &u
}

func cloneProgress(p model.DayProgress) model.DayProgress {
	p.CompletedTasks = append([]string{}, p.CompletedTasks...)
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		p.CompletedAt = &at
	}
	return p
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.emails[user.Email]; taken {
		return ErrDuplicateEmail
	}
	r.s.users[user.ID] = *cloneUser(*user)
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, nil
	}
	return cloneUser(r.s.users[id]), nil
}

func (r memoryUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

func (r memoryUsers) CountByRole(_ context.Context, role string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int64
	for _, u := range r.s.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (r memoryUsers) ListByRole(_ context.Context, role string) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := []model.User{}
	for _, u := range r.s.users {
		if u.Role == role {
			users = append(users, *cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r memoryUsers) UpdateEmail(_ context.Context, id, email string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := r.s.emails[email]; taken && owner != id {
		return ErrDuplicateEmail
	}
	delete(r.s.emails, user.Email)
	user.Email = email
	user.UpdatedAt = now
	r.s.users[id] = user
	r.s.emails[email] = id
	return nil
}

func (r memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = now
	r.s.users[id] = user
	return nil
}

func (r memoryUsers) UpdateAvatar(_ context.Context, id, avatar string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Avatar = &avatar
	user.UpdatedAt = now
	r.s.users[id] = user
	return nil
}

type memoryResets struct{ s *MemoryStore }

func (r memoryResets) Upsert(_ context.Context, reset *model.PasswordReset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record := *reset
	record.Used = false
	r.s.resets[reset.Email] = record
	return nil
}

func (r memoryResets) FindByEmail(_ context.Context, email string) (*model.PasswordReset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reset, ok := r.s.resets[email]
	if !ok {
		return nil, nil
	}
	return &reset, nil
}

func (r memoryResets) Consume(_ context.Context, email, otp string, now time.Time, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reset, ok := r.s.resets[email]
	if !ok || reset.Used || reset.OTP != otp || now.After(reset.ExpiresAt) {
		return ErrResetNotActive
	}
	id, ok := r.s.emails[email]
	if !ok {
		return ErrNotFound
	}
	reset.Used = true
	r.s.resets[email] = reset

	user := r.s.users[id]
	user.PasswordHash = passwordHash
	user.UpdatedAt = now
	r.s.users[id] = user
	return nil
}

type memoryProgress struct{ s *MemoryStore }

func (r memoryProgress) ListByUser(_ context.Context, userID string) ([]model.DayProgress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	progress := []model.DayProgress{}
	for key, p := range r.s.progress {
		if key.userID == userID {
			progress = append(progress, cloneProgress(p))
		}
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].DayNumber < progress[j].DayNumber })
	return progress, nil
}

// record returns the stored day or a fresh one; callers hold the write lock
func (r memoryProgress) record(userID string, day int) model.DayProgress {
	p, ok := r.s.progress[progressKey{userID, day}]
	if !ok {
		p = model.DayProgress{ID: uuid.NewString(), UserID: userID, DayNumber: day, CompletedTasks: []string{}}
	}
	return p
}

func (r memoryProgress) SetTask(_ context.Context, userID string, day int, taskID string, completed bool, now time.Time) (*model.DayProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.record(userID, day)
	idx := slices.Index(p.CompletedTasks, taskID)
	if completed {
		if idx < 0 {
			p.CompletedTasks = append(p.CompletedTasks, taskID)
		}
	} else {
		if idx >= 0 {
			p.CompletedTasks = slices.Delete(p.CompletedTasks, idx, idx+1)
		}
		p.IsCompleted = false
		p.CompletedAt = nil
	}
	p.UpdatedAt = now
	r.s.progress[progressKey{userID, day}] = p
	out := cloneProgress(p)
	return &out, nil
}

func (r memoryProgress) CompleteDay(ctx context.Context, userID string, day int, now time.Time) error {
	_, err := r.SetDayCompletion(ctx, userID, day, true, now)
	return err
}

func (r memoryProgress) SetDayCompletion(_ context.Context, userID string, day int, completed bool, now time.Time) (*model.DayProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.record(userID, day)
	p.IsCompleted = completed
	p.CompletedAt = nil
	if completed {
		at := now
		p.CompletedAt = &at
	}
	p.UpdatedAt = now
	r.s.progress[progressKey{userID, day}] = p
	out := cloneProgress(p)
	return &out, nil
}
