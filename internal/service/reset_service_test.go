package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"learnstudio/internal/mail"
	"learnstudio/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerIntern(t *testing.T, f *fixture, email, password string) *model.User {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), model.RegisterRequest{Name: "Intern", Email: email, Password: password})
	require.NoError(t, err)
	return user
}

func fixedOTP(code string) func() (string, error) {
	return func() (string, error) { return code, nil }
}

func TestResetService_RequestUnknownEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.resets.RequestReset(ctx, "nobody@x.com"))

	record, err := f.store.Resets().FindByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Empty(t, f.mail.sent())
}

func TestResetService_RequestIssuesCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	registerIntern(t, f, "a@x.com", "secret1")
	f.resets.newOTP = fixedOTP("123456")

	require.NoError(t, f.resets.RequestReset(ctx, "A@x.com"))

	record, err := f.store.Resets().FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "123456", record.OTP)
	assert.False(t, record.Used)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), record.ExpiresAt)

	sent := f.mail.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)
	assert.Equal(t, mail.ResetSubject, sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "123456")
}

func TestResetService_RequestSurvivesFullMailQueue(t *testing.T) {
	f := newFixture()
	registerIntern(t, f, "a@x.com", "secret1")
	f.mail.full = true

	assert.NoError(t, f.resets.RequestReset(context.Background(), "a@x.com"))
}

func TestResetService_NewRequestReplacesOld(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	registerIntern(t, f, "a@x.com", "secret1")

	f.resets.newOTP = fixedOTP("111111")
	require.NoError(t, f.resets.RequestReset(ctx, "a@x.com"))
	f.resets.newOTP = fixedOTP("222222")
	require.NoError(t, f.resets.RequestReset(ctx, "a@x.com"))

	assert.ErrorIs(t, f.resets.ConfirmReset(ctx, "a@x.com", "111111", "newpass1"), ErrOTPMismatch)
	assert.NoError(t, f.resets.ConfirmReset(ctx, "a@x.com", "222222", "newpass1"))
}

func TestResetService_ConfirmOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	registerIntern(t, f, "a@x.com", "secret1")
	f.resets.newOTP = fixedOTP("654321")
	require.NoError(t, f.resets.RequestReset(ctx, "a@x.com"))

	require.NoError(t, f.resets.ConfirmReset(ctx, "a@x.com", "654321", "newpass1"))

	_, _, err := f.auth.Login(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.auth.Login(ctx, "a@x.com", "newpass1")
	assert.NoError(t, err)

	err = f.resets.ConfirmReset(ctx, "a@x.com", "654321", "another1")
	assert.ErrorIs(t, err, ErrNoActiveRequest)
}

func TestResetService_ConfirmFailures(t *testing.T) {
	tests := []struct {
		name     string
		request  bool
		advance  time.Duration
		otp      string
		password string
		wantErr  error
	}{
		{name: "no request", otp: "123456", password: "newpass1", wantErr: ErrNoActiveRequest},
		{name: "expired wins over mismatch", request: true, advance: 11 * time.Minute, otp: "000000", password: "x", wantErr: ErrOTPExpired},
		{name: "mismatch wins over weak password", request: true, otp: "000000", password: "x", wantErr: ErrOTPMismatch},
		{name: "weak password", request: true, otp: "123456", password: "abc", wantErr: ErrWeakPassword},
		{name: "valid at expiry instant", request: true, advance: 10 * time.Minute, otp: "123456", password: "newpass1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			registerIntern(t, f, "a@x.com", "secret1")
			f.resets.newOTP = fixedOTP("123456")
			if tt.request {
				require.NoError(t, f.resets.RequestReset(ctx, "a@x.com"))
			}
			f.clock.Advance(tt.advance)

			err := f.resets.ConfirmReset(ctx, "a@x.com", tt.otp, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResetService_FailedConfirmKeepsRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	registerIntern(t, f, "a@x.com", "secret1")
	f.resets.newOTP = fixedOTP("123456")
	require.NoError(t, f.resets.RequestReset(ctx, "a@x.com"))

	require.ErrorIs(t, f.resets.ConfirmReset(ctx, "a@x.com", "999999", "newpass1"), ErrOTPMismatch)
	require.ErrorIs(t, f.resets.ConfirmReset(ctx, "a@x.com", "123456", "abc"), ErrWeakPassword)

	assert.NoError(t, f.resets.ConfirmReset(ctx, "a@x.com", "123456", "newpass1"))
}

func TestResetService_ConcurrentConfirm(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	registerIntern(t, f, "a@x.com", "secret1")
	f.resets.newOTP = fixedOTP("123456")
	require.NoError(t, f.resets.RequestReset(ctx, "a@x.com"))

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		losers    atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.resets.ConfirmReset(ctx, "a@x.com", "123456", "newpass1")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrNoActiveRequest):
				losers.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(7), losers.Load())
}
