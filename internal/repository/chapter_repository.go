package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepstack/prepcore-backend/internal/model"
)

// ChapterRepository resolves chapter policies. Chapters are owned and
// mutated by the course management service; this is a read-side lookup.
type ChapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository creates a new ChapterRepository.
func NewChapterRepository(pool *pgxpool.Pool) *ChapterRepository {
	return &ChapterRepository{pool: pool}
}

// GetPolicy retrieves the submission policy for a chapter. Returns
// pgx.ErrNoRows (wrapped by pgx) when the chapter does not exist.
func (r *ChapterRepository) GetPolicy(ctx context.Context, chapterID uuid.UUID) (*model.ChapterPolicy, error) {
	p := &model.ChapterPolicy{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, subject_id, attempt_limit
		 FROM chapters WHERE id = $1`, chapterID,
	).Scan(&p.ChapterID, &p.CourseID, &p.SubjectID, &p.AttemptLimit)
	if err != nil {
		return nil, err
	}
	return p, nil
}
