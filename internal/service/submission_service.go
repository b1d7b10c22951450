package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prepstack/prepcore-backend/internal/model"
	"github.com/rs/zerolog"
)

// Domain errors surfaced by the submission pipeline.
var (
	ErrAttemptLimitReached = errors.New("attempt limit reached")
	ErrChapterMismatch     = errors.New("chapter does not belong to the given course and subject")
	ErrScoreExceedsTotal   = errors.New("score cannot exceed total")
)

// AttemptLedger reserves and releases units of per-chapter attempt quota.
// Reservations must be atomic per key: once a limit is reached no concurrent
// reservation may be granted.
type AttemptLedger interface {
	TryReserve(ctx context.Context, key model.AttemptKey, limit *int) (model.Reservation, error)
	Release(ctx context.Context, key model.AttemptKey) error
}

// QuestionSource supplies the question pool for a scope filter.
type QuestionSource interface {
	ListByFilter(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)
}

// PolicyProvider resolves a chapter to its course, subject and attempt limit.
type PolicyProvider interface {
	GetPolicy(ctx context.Context, chapterID uuid.UUID) (*model.ChapterPolicy, error)
}

// ResultWriter appends graded attempts.
type ResultWriter interface {
	Create(ctx context.Context, res *model.TestResult) error
}

// SubmissionService runs the submission pipeline: reserve quota, fetch the
// pool, select, grade, persist — with rollback of the reservation whenever
// grading cannot proceed after quota was consumed.
type SubmissionService struct {
	ledger    AttemptLedger
	questions QuestionSource
	policies  PolicyProvider
	results   ResultWriter
	log       zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	ledger AttemptLedger,
	questions QuestionSource,
	policies PolicyProvider,
	results ResultWriter,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		ledger:    ledger,
		questions: questions,
		policies:  policies,
		results:   results,
		log:       log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit dispatches on the submission variant. The switch is exhaustive over
// the sealed Submission interface.
func (s *SubmissionService) Submit(ctx context.Context, userID int, sub model.Submission) (*model.SubmitTestResponse, error) {
	switch v := sub.(type) {
	case model.ChapterSubmission:
		return s.submitChapter(ctx, userID, v)
	case model.FreeSubmission:
		return s.submitFree(ctx, userID, v)
	case model.MasterSubmission:
		return s.submitMaster(ctx, userID, v)
	case model.ManualSubmission:
		return s.submitManual(ctx, userID, v)
	default:
		return nil, fmt.Errorf("unknown submission variant %T", sub)
	}
}

// submitChapter grades the full chapter pool under the chapter's attempt
// quota. The reservation happens before any question work; if the pool turns
// out to be empty (or grading cannot complete), the reservation is released
// so a misconfigured chapter never costs the user an attempt.
func (s *SubmissionService) submitChapter(ctx context.Context, userID int, sub model.ChapterSubmission) (*model.SubmitTestResponse, error) {
	policy, err := s.policies.GetPolicy(ctx, sub.ChapterID)
	if err != nil {
		return nil, err
	}
	if policy.CourseID != sub.CourseID || policy.SubjectID != sub.SubjectID {
		return nil, ErrChapterMismatch
	}

	key := model.AttemptKey{
		UserID:    userID,
		CourseID:  sub.CourseID,
		ChapterID: sub.ChapterID,
		TestType:  model.TestTypeChapter,
	}

	reservation, err := s.ledger.TryReserve(ctx, key, policy.AttemptLimit)
	if err != nil {
		return nil, fmt.Errorf("reserve attempt: %w", err)
	}
	if !reservation.Granted {
		return nil, ErrAttemptLimitReached
	}

	pool, err := s.questions.ListByFilter(ctx, model.QuestionFilter{
		CourseID:  &sub.CourseID,
		SubjectID: &sub.SubjectID,
		ChapterID: &sub.ChapterID,
	})
	if err != nil {
		s.releaseReservation(ctx, key)
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	selected, err := SelectQuestions(pool, nil)
	if err != nil {
		s.releaseReservation(ctx, key)
		return nil, err
	}

	score, details := GradeAnswers(selected, sub.Answers)

	result := &model.TestResult{
		UserID:    userID,
		CourseID:  &sub.CourseID,
		SubjectID: sub.SubjectID,
		ChapterID: &sub.ChapterID,
		TestType:  model.TestTypeChapter,
		Score:     score,
		Total:     len(selected),
		Details:   details,
	}
	if err := s.results.Create(ctx, result); err != nil {
		s.releaseReservation(ctx, key)
		return nil, fmt.Errorf("persist result: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Str("chapter_id", sub.ChapterID.String()).
		Int("score", score).
		Int("total", result.Total).
		Int("attempt", reservation.AttemptCount).
		Msg("Chapter test graded")

	attemptCount := reservation.AttemptCount
	return &model.SubmitTestResponse{
		Score:           score,
		Total:           result.Total,
		DetailedResults: details,
		AttemptCount:    &attemptCount,
	}, nil
}

// submitFree grades a random subject-wide sample. Free tests are unlimited
// and never touch the ledger.
func (s *SubmissionService) submitFree(ctx context.Context, userID int, sub model.FreeSubmission) (*model.SubmitTestResponse, error) {
	pool, err := s.questions.ListByFilter(ctx, model.QuestionFilter{SubjectID: &sub.SubjectID})
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	limit := FreeModeLimit
	selected, err := SelectQuestions(pool, &limit)
	if err != nil {
		return nil, err
	}

	score, details := GradeAnswers(selected, sub.Answers)

	result := &model.TestResult{
		UserID:    userID,
		SubjectID: sub.SubjectID,
		TestType:  model.TestTypeFree,
		Score:     score,
		Total:     len(selected),
		Details:   details,
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	return &model.SubmitTestResponse{
		Score:           score,
		Total:           result.Total,
		DetailedResults: details,
	}, nil
}

// submitMaster grades a random course-wide sample. Master tests are
// unlimited and never touch the ledger.
func (s *SubmissionService) submitMaster(ctx context.Context, userID int, sub model.MasterSubmission) (*model.SubmitTestResponse, error) {
	pool, err := s.questions.ListByFilter(ctx, model.QuestionFilter{
		CourseID:  &sub.CourseID,
		SubjectID: &sub.SubjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	limit := MasterModeLimit
	selected, err := SelectQuestions(pool, &limit)
	if err != nil {
		return nil, err
	}

	score, details := GradeAnswers(selected, sub.Answers)

	result := &model.TestResult{
		UserID:    userID,
		CourseID:  &sub.CourseID,
		SubjectID: sub.SubjectID,
		TestType:  model.TestTypeMaster,
		Score:     score,
		Total:     len(selected),
		Details:   details,
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	return &model.SubmitTestResponse{
		Score:           score,
		Total:           result.Total,
		DetailedResults: details,
	}, nil
}

// submitManual records a caller-supplied result. Manual submissions never
// consume attempt quota and skip selection and grading entirely.
func (s *SubmissionService) submitManual(ctx context.Context, userID int, sub model.ManualSubmission) (*model.SubmitTestResponse, error) {
	if sub.Score < 0 || sub.Total < 0 || sub.Score > sub.Total {
		return nil, ErrScoreExceedsTotal
	}

	details := sub.Details
	if details == nil {
		details = []model.AnswerDetail{}
	}

	result := &model.TestResult{
		UserID:    userID,
		CourseID:  &sub.CourseID,
		SubjectID: sub.SubjectID,
		ChapterID: sub.ChapterID,
		TestType:  model.TestTypeManual,
		Score:     sub.Score,
		Total:     sub.Total,
		Details:   details,
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	return &model.SubmitTestResponse{
		Score:           sub.Score,
		Total:           sub.Total,
		DetailedResults: details,
	}, nil
}

// releaseReservation undoes a held reservation. Release failures are logged;
// the caller keeps the error that triggered the rollback.
func (s *SubmissionService) releaseReservation(ctx context.Context, key model.AttemptKey) {
	if err := s.ledger.Release(ctx, key); err != nil {
		s.log.Error().
			Err(err).
			Int("user_id", key.UserID).
			Str("chapter_id", key.ChapterID.String()).
			Msg("Failed to release attempt reservation")
	}
}
