package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prepstack/prepcore-backend/internal/model"
	"github.com/prepstack/prepcore-backend/internal/response"
	"github.com/rs/zerolog"
)

// Result access errors.
var (
	ErrResultNotFound    = errors.New("test result not found")
	ErrNotResultOwner    = errors.New("not the owner of this test result")
	ErrResultNotEditable = errors.New("only manual results can be edited")
)

// ResultStore is the persistence surface for graded attempts.
type ResultStore interface {
	ResultWriter
	GetByID(ctx context.Context, id uuid.UUID) (*model.TestResult, error)
	ListByUser(ctx context.Context, userID int, filter model.ResultFilter, limit, offset int) ([]model.TestResult, int, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score, total int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResultService exposes a user's result history with owner-scoped edit and
// delete, and the admin manual-entry path.
type ResultService struct {
	results ResultStore
	ledger  AttemptLedger
	log     zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(results ResultStore, ledger AttemptLedger, log zerolog.Logger) *ResultService {
	return &ResultService{
		results: results,
		ledger:  ledger,
		log:     log.With().Str("component", "result_service").Logger(),
	}
}

// List retrieves a user's results, newest first, with pagination.
func (s *ResultService) List(ctx context.Context, userID int, filter model.ResultFilter, page, perPage int) ([]model.TestResult, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	results, total, err := s.results.ListByUser(ctx, userID, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []model.TestResult{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return results, pagination, nil
}

// Update edits score and total on a result. Only the owner may edit, and
// only manual results are editable: machine-graded records stay immutable.
func (s *ResultService) Update(ctx context.Context, id uuid.UUID, requesterID, score, total int) (*model.TestResult, error) {
	result, err := s.getOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if result.TestType != model.TestTypeManual {
		return nil, ErrResultNotEditable
	}
	if score > total {
		return nil, ErrScoreExceedsTotal
	}

	if err := s.results.UpdateScore(ctx, id, score, total); err != nil {
		return nil, fmt.Errorf("update result: %w", err)
	}

	result.Score = score
	result.Total = total
	return result, nil
}

// Delete removes an owned result. Deleting a chapter result also releases
// one unit of the chapter's attempt quota, so the counter keeps matching the
// set of surviving results.
func (s *ResultService) Delete(ctx context.Context, id uuid.UUID, requesterID int) error {
	result, err := s.getOwned(ctx, id, requesterID)
	if err != nil {
		return err
	}

	if err := s.results.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}

	if result.TestType == model.TestTypeChapter && result.CourseID != nil && result.ChapterID != nil {
		key := model.AttemptKey{
			UserID:    result.UserID,
			CourseID:  *result.CourseID,
			ChapterID: *result.ChapterID,
			TestType:  model.TestTypeChapter,
		}
		if err := s.ledger.Release(ctx, key); err != nil {
			return fmt.Errorf("release attempt after delete: %w", err)
		}
	}

	s.log.Info().
		Str("result_id", id.String()).
		Int("user_id", requesterID).
		Str("test_type", string(result.TestType)).
		Msg("Test result deleted")
	return nil
}

// AddManualByAdmin records a manual result for any user, bypassing ownership
// checks. It still goes through the same store path as user submissions.
func (s *ResultService) AddManualByAdmin(ctx context.Context, req model.AdminManualResultRequest) (*model.TestResult, error) {
	if req.Score > req.Total {
		return nil, ErrScoreExceedsTotal
	}

	result := &model.TestResult{
		UserID:    req.UserID,
		CourseID:  &req.CourseID,
		SubjectID: req.SubjectID,
		ChapterID: req.ChapterID,
		TestType:  model.TestTypeManual,
		Score:     req.Score,
		Total:     req.Total,
		Details:   []model.AnswerDetail{},
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist manual result: %w", err)
	}
	return result, nil
}

func (s *ResultService) getOwned(ctx context.Context, id uuid.UUID, requesterID int) (*model.TestResult, error) {
	result, err := s.results.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	if result.UserID != requesterID {
		return nil, ErrNotResultOwner
	}
	return result, nil
}
