package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnstudio/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "name", "email", "password_hash", "role", "course", "avatar", "created_at", "updated_at"}

func testUser() *model.User {
	course := "aiml"
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.User{
		ID:           "u-1",
		Name:         "Ada",
		Email:        "ada@x.com",
		PasswordHash: "hash",
		Role:         model.RoleIntern,
		Course:       &course,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface, u *model.User)
		wantErr   error
		anyErr    bool
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface, u *model.User) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Course, u.Avatar, u.CreatedAt, u.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation maps to duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface, u *model.User) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Course, u.Avatar, u.CreatedAt, u.UpdatedAt).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: ErrDuplicateEmail,
		},
		{
			name: "other failures are wrapped",
			setupMock: func(mock pgxmock.PgxPoolIface, u *model.User) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Course, u.Avatar, u.CreatedAt, u.UpdatedAt).
					WillReturnError(errors.New("connection refused"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			u := testUser()
			tt.setupMock(mock, u)

			err = NewUserRepository(mock).Create(context.Background(), u)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrDuplicateEmail)
				assert.Contains(t, err.Error(), "connection refused")
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	u := testUser()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs(u.Email).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Course, (*string)(nil), u.CreatedAt, u.UpdatedAt))

	got, err := NewUserRepository(mock).FindByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "aiml", *got.Course)
	assert.Nil(t, got.Avatar)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userCols))

	got, err := NewUserRepository(mock).FindByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CountByRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1`).
		WithArgs(model.RoleAdmin).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := NewUserRepository(mock).CountByRole(context.Background(), model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateEmail(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "updated",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET email`).
					WithArgs("u-1", "new@x.com", now).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "taken",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET email`).
					WithArgs("u-1", "new@x.com", now).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: ErrDuplicateEmail,
		},
		{
			name: "no such user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET email`).
					WithArgs("u-1", "new@x.com", now).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			err = NewUserRepository(mock).UpdateEmail(context.Background(), "u-1", "new@x.com", now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
