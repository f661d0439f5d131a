package repository

import (
	"context"
	"time"

	"learnstudio/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

const progressColumns = `id, user_id, day_number, completed_tasks, is_completed, completed_at, updated_at`

type progressRepository struct {
	db DBTX
}

// NewProgressRepository creates a Postgres-backed ProgressRepository
func NewProgressRepository(db DBTX) ProgressRepository {
	return &progressRepository{db: db}
}

func scanProgress(row pgx.Row) (*model.DayProgress, error) {
	p := &model.DayProgress{}
	err := row.Scan(&p.ID, &p.UserID, &p.DayNumber, &p.CompletedTasks, &p.IsCompleted, &p.CompletedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.CompletedTasks == nil {
		p.CompletedTasks = []string{}
	}
	return p, nil
}

func (r *progressRepository) ListByUser(ctx context.Context, userID string) ([]model.DayProgress, error) {
	rows, err := r.db.Query(ctx, `SELECT `+progressColumns+` FROM progress WHERE user_id = $1 ORDER BY day_number`, userID)
	if err != nil {
		return nil, oops.Code("PROGRESS_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	defer rows.Close()

	progress := []model.DayProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, oops.Code("PROGRESS_SCAN_FAILED").With("user_id", userID).Wrap(err)
		}
		progress = append(progress, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PROGRESS_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	return progress, nil
}

// SetTask adds or removes a task id from the day's set. Removing a task reopens the day.
func (r *progressRepository) SetTask(ctx context.Context, userID string, day int, taskID string, completed bool, now time.Time) (*model.DayProgress, error) {
	var sql string
	if completed {
		sql = `
		INSERT INTO progress (id, user_id, day_number, completed_tasks, is_completed, updated_at)
		VALUES ($1, $2, $3, ARRAY[$4::text], FALSE, $5)
		ON CONFLICT (user_id, day_number) DO UPDATE
		SET completed_tasks = CASE
				WHEN $4::text = ANY(progress.completed_tasks) THEN progress.completed_tasks
				ELSE array_append(progress.completed_tasks, $4::text)
			END,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + progressColumns
	} else {
		sql = `
		INSERT INTO progress (id, user_id, day_number, completed_tasks, is_completed, updated_at)
		VALUES ($1, $2, $3, '{}', FALSE, $5)
		ON CONFLICT (user_id, day_number) DO UPDATE
		SET completed_tasks = array_remove(progress.completed_tasks, $4::text),
			is_completed = FALSE,
			completed_at = NULL,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + progressColumns
	}

	p, err := scanProgress(r.db.QueryRow(ctx, sql, uuid.NewString(), userID, day, taskID, now))
	if err != nil {
		return nil, oops.Code("PROGRESS_TASK_FAILED").
			With("user_id", userID).
			With("day_number", day).
			With("task_id", taskID).
			Wrap(err)
	}
	return p, nil
}

func (r *progressRepository) CompleteDay(ctx context.Context, userID string, day int, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO progress (id, user_id, day_number, completed_tasks, is_completed, completed_at, updated_at)
		VALUES ($1, $2, $3, '{}', TRUE, $4, $4)
		ON CONFLICT (user_id, day_number) DO UPDATE
		SET is_completed = TRUE, completed_at = EXCLUDED.completed_at, updated_at = EXCLUDED.updated_at
	`, uuid.NewString(), userID, day, now)
	if err != nil {
		return oops.Code("PROGRESS_DAY_FAILED").With("user_id", userID).With("day_number", day).Wrap(err)
	}
	return nil
}

func (r *progressRepository) SetDayCompletion(ctx context.Context, userID string, day int, completed bool, now time.Time) (*model.DayProgress, error) {
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}
	p, err := scanProgress(r.db.QueryRow(ctx, `
		INSERT INTO progress (id, user_id, day_number, completed_tasks, is_completed, completed_at, updated_at)
		VALUES ($1, $2, $3, '{}', $4, $5, $6)
		ON CONFLICT (user_id, day_number) DO UPDATE
		SET is_completed = EXCLUDED.is_completed, completed_at = EXCLUDED.completed_at, updated_at = EXCLUDED.updated_at
		RETURNING `+progressColumns,
		uuid.NewString(), userID, day, completed, completedAt, now))
	if err != nil {
		return nil, oops.Code("PROGRESS_OVERRIDE_FAILED").With("user_id", userID).With("day_number", day).Wrap(err)
	}
	return p, nil
}
