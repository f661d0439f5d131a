package repository

import (
	"context"
	"errors"
	"time"

	"learnstudio/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

type resetRepository struct {
	db DBTX
}

// NewResetRepository creates a Postgres-backed ResetRepository
func NewResetRepository(db DBTX) ResetRepository {
	return &resetRepository{db: db}
}

// Upsert replaces any previous record for the email, reviving it as unused
func (r *resetRepository) Upsert(ctx context.Context, reset *model.PasswordReset) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_resets (email, otp, expires_at, used, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		ON CONFLICT (email) DO UPDATE
		SET otp = EXCLUDED.otp, expires_at = EXCLUDED.expires_at, used = FALSE, created_at = EXCLUDED.created_at
	`, reset.Email, reset.OTP, reset.ExpiresAt, reset.CreatedAt)
	if err != nil {
		return oops.Code("RESET_UPSERT_FAILED").With("email", reset.Email).Wrap(err)
	}
	return nil
}

func (r *resetRepository) FindByEmail(ctx context.Context, email string) (*model.PasswordReset, error) {
	reset := &model.PasswordReset{}
	err := r.db.QueryRow(ctx, `
		SELECT email, otp, expires_at, used, created_at
		FROM password_resets
		WHERE email = $1
	`, email).Scan(&reset.Email, &reset.OTP, &reset.ExpiresAt, &reset.Used, &reset.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, oops.Code("RESET_FIND_FAILED").With("email", email).Wrap(err)
	}
	return reset, nil
}

// Consume flips used inside a transaction so the password update and the
// single-use mark commit together. The row lock taken by the UPDATE makes
// concurrent confirms serialize; the loser sees used = TRUE and matches nothing.
func (r *resetRepository) Consume(ctx context.Context, email, otp string, now time.Time, passwordHash string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").With("email", email).Wrap(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE password_resets SET used = TRUE
		WHERE email = $1 AND otp = $2 AND used = FALSE AND expires_at >= $3
	`, email, otp, now)
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").With("email", email).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResetNotActive
	}

	tag, err = tx.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE email = $1`, email, passwordHash, now)
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").With("email", email).With("step", "password").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		return oops.Code("RESET_CONSUME_FAILED").With("email", email).With("step", "commit").Wrap(err)
	}
	return nil
}
