package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepstack/prepcore-backend/internal/model"
)

// QuestionRepository is the read-only view of the question bank. The content
// administration service owns these rows; the submission core only filters
// and reads them.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByFilter retrieves the question pool matching the filter. Nil filter
// fields are not applied. An empty pool returns a nil slice, not an error;
// callers decide whether emptiness is a failure.
func (r *QuestionRepository) ListByFilter(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	query := `SELECT id, course_id, subject_id, chapter_id, question_text, options, correct_answer
	          FROM questions WHERE 1=1`
	var args []any

	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		query += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		query += fmt.Sprintf(" AND subject_id = $%d", len(args))
	}
	if filter.ChapterID != nil {
		args = append(args, *filter.ChapterID)
		query += fmt.Sprintf(" AND chapter_id = $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.CourseID, &q.SubjectID, &q.ChapterID, &q.QuestionText, &q.Options, &q.CorrectAnswer); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
