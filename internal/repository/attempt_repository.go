package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepstack/prepcore-backend/internal/model"
)

// AttemptRepository is the durable attempt ledger: one row per
// (user, course, chapter, test type) holding a monotonically guarded counter.
// All mutations go through single conditional statements so the quota holds
// across concurrent request handlers and service instances.
type AttemptRepository struct {
	pool         *pgxpool.Pool
	storeTimeout time.Duration
}

// NewAttemptRepository creates a new AttemptRepository. storeTimeout bounds
// every ledger statement so a reservation call never blocks indefinitely.
func NewAttemptRepository(pool *pgxpool.Pool, storeTimeout time.Duration) *AttemptRepository {
	return &AttemptRepository{pool: pool, storeTimeout: storeTimeout}
}

// TryReserve claims one unit of attempt quota for key.
//
//   - limit set to 0: denied immediately, nothing touches the store.
//   - limit nil (unlimited): increment-or-create, always granted.
//   - limit > 0: a single conditional upsert increments the counter only while
//     it is strictly below the limit, creating the row at 1 if absent. The
//     statement either commits the increment or affects no row; there is no
//     read-then-write window for two submissions to slip through together,
//     and retrying it after a timeout cannot double-consume.
func (r *AttemptRepository) TryReserve(ctx context.Context, key model.AttemptKey, limit *int) (model.Reservation, error) {
	if limit != nil && *limit == 0 {
		return model.Reservation{Granted: false, AttemptCount: 0}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	var count int

	if limit == nil {
		err := r.pool.QueryRow(ctx,
			`INSERT INTO test_attempts (user_id, course_id, chapter_id, test_type, attempt_count)
			 VALUES ($1, $2, $3, $4, 1)
			 ON CONFLICT (user_id, course_id, chapter_id, test_type)
			 DO UPDATE SET attempt_count = test_attempts.attempt_count + 1, updated_at = NOW()
			 RETURNING attempt_count`,
			key.UserID, key.CourseID, key.ChapterID, key.TestType,
		).Scan(&count)
		if err != nil {
			return model.Reservation{}, fmt.Errorf("reserve attempt: %w", err)
		}
		return model.Reservation{Granted: true, AttemptCount: count}, nil
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO test_attempts (user_id, course_id, chapter_id, test_type, attempt_count)
		 VALUES ($1, $2, $3, $4, 1)
		 ON CONFLICT (user_id, course_id, chapter_id, test_type)
		 DO UPDATE SET attempt_count = test_attempts.attempt_count + 1, updated_at = NOW()
		 WHERE test_attempts.attempt_count < $5
		 RETURNING attempt_count`,
		key.UserID, key.CourseID, key.ChapterID, key.TestType, *limit,
	).Scan(&count)

	if errors.Is(err, pgx.ErrNoRows) {
		// Conditional update matched nothing: the counter already sits at the
		// limit. Report the current value without mutating it.
		current, getErr := r.GetCount(ctx, key)
		if getErr != nil {
			return model.Reservation{}, fmt.Errorf("read denied attempt count: %w", getErr)
		}
		return model.Reservation{Granted: false, AttemptCount: current}, nil
	}
	if err != nil {
		return model.Reservation{}, fmt.Errorf("reserve attempt: %w", err)
	}

	return model.Reservation{Granted: true, AttemptCount: count}, nil
}

// Release returns one unit of quota for key, flooring the counter at zero.
// Used to roll back a reservation whose submission could not be graded, and
// to keep the ledger consistent when a chapter result is deleted.
func (r *AttemptRepository) Release(ctx context.Context, key model.AttemptKey) error {
	ctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`UPDATE test_attempts
		 SET attempt_count = attempt_count - 1, updated_at = NOW()
		 WHERE user_id = $1 AND course_id = $2 AND chapter_id = $3 AND test_type = $4
		   AND attempt_count > 0`,
		key.UserID, key.CourseID, key.ChapterID, key.TestType,
	)
	if err != nil {
		return fmt.Errorf("release attempt: %w", err)
	}
	return nil
}

// GetCount reads the current counter for key. Missing rows read as zero.
func (r *AttemptRepository) GetCount(ctx context.Context, key model.AttemptKey) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT attempt_count FROM test_attempts
		 WHERE user_id = $1 AND course_id = $2 AND chapter_id = $3 AND test_type = $4`,
		key.UserID, key.CourseID, key.ChapterID, key.TestType,
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}
