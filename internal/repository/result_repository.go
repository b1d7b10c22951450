package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepstack/prepcore-backend/internal/model"
)

// ResultRepository persists graded attempts. Results are append-mostly:
// machine-graded rows are written once and never updated, manual rows may be
// edited by their owner.
type ResultRepository struct {
	pool         *pgxpool.Pool
	storeTimeout time.Duration
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool, storeTimeout time.Duration) *ResultRepository {
	return &ResultRepository{pool: pool, storeTimeout: storeTimeout}
}

// Create appends a graded attempt and fills in its id and timestamps.
func (r *ResultRepository) Create(ctx context.Context, res *model.TestResult) error {
	ctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	details, err := json.Marshal(res.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO test_results (user_id, course_id, subject_id, chapter_id, test_type, score, total, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		res.UserID, res.CourseID, res.SubjectID, res.ChapterID, res.TestType, res.Score, res.Total, details,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

// GetByID retrieves a single result.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestResult, error) {
	res := &model.TestResult{}
	var details []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, course_id, subject_id, chapter_id, test_type, score, total, details, created_at, updated_at
		 FROM test_results WHERE id = $1`, id,
	).Scan(&res.ID, &res.UserID, &res.CourseID, &res.SubjectID, &res.ChapterID, &res.TestType,
		&res.Score, &res.Total, &details, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &res.Details); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	return res, nil
}

// ListByUser retrieves a user's results, newest first, with optional filters
// and pagination.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int, filter model.ResultFilter, limit, offset int) ([]model.TestResult, int, error) {
	baseQuery := ` FROM test_results WHERE user_id = $1`
	args := []any{userID}

	if filter.TestType != nil {
		args = append(args, *filter.TestType)
		baseQuery += fmt.Sprintf(" AND test_type = $%d", len(args))
	}
	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		baseQuery += fmt.Sprintf(" AND subject_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, course_id, subject_id, chapter_id, test_type, score, total, details, created_at, updated_at` +
		baseQuery + ` ORDER BY created_at DESC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		var res model.TestResult
		var details []byte
		if err := rows.Scan(&res.ID, &res.UserID, &res.CourseID, &res.SubjectID, &res.ChapterID, &res.TestType,
			&res.Score, &res.Total, &details, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(details, &res.Details); err != nil {
			return nil, 0, fmt.Errorf("unmarshal details: %w", err)
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// UpdateScore overwrites score and total on a manual result. Callers are
// responsible for the ownership and test-type checks.
func (r *ResultRepository) UpdateScore(ctx context.Context, id uuid.UUID, score, total int) error {
	ctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`UPDATE test_results SET score = $1, total = $2, updated_at = NOW() WHERE id = $3`,
		score, total, id)
	return err
}

// Delete removes a result.
func (r *ResultRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `DELETE FROM test_results WHERE id = $1`, id)
	return err
}
