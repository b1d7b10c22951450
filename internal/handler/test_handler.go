package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepstack/prepcore-backend/internal/middleware"
	"github.com/prepstack/prepcore-backend/internal/model"
	"github.com/prepstack/prepcore-backend/internal/response"
	"github.com/prepstack/prepcore-backend/internal/service"
	"github.com/prepstack/prepcore-backend/internal/validator"
)

// TestHandler handles test submission.
type TestHandler struct {
	submissionService *service.SubmissionService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(submissionService *service.SubmissionService) *TestHandler {
	return &TestHandler{submissionService: submissionService}
}

// SubmitTest godoc
// POST /api/v1/tests/submit
// Grades a test submission (chapter/free/master) or records a manual result.
func (h *TestHandler) SubmitTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, fields := buildSubmission(req)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), claims.UserID, sub)
	if err != nil {
		failSubmission(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// buildSubmission narrows the wire payload into the submission variant for
// its test type, collecting field errors for anything required but missing.
func buildSubmission(req model.SubmitTestRequest) (model.Submission, map[string]string) {
	fields := make(map[string]string)

	switch model.TestType(req.TestType) {
	case model.TestTypeChapter:
		if req.CourseID == nil {
			fields["course_id"] = "course_id is required for chapter tests"
		}
		if req.ChapterID == nil {
			fields["chapter_id"] = "chapter_id is required for chapter tests"
		}
		if len(fields) > 0 {
			return nil, fields
		}
		return model.ChapterSubmission{
			CourseID:  *req.CourseID,
			SubjectID: *req.SubjectID,
			ChapterID: *req.ChapterID,
			Answers:   req.Answers,
		}, nil

	case model.TestTypeFree:
		return model.FreeSubmission{
			SubjectID: *req.SubjectID,
			Answers:   req.Answers,
		}, nil

	case model.TestTypeMaster:
		if req.CourseID == nil {
			fields["course_id"] = "course_id is required for master tests"
			return nil, fields
		}
		return model.MasterSubmission{
			CourseID:  *req.CourseID,
			SubjectID: *req.SubjectID,
			Answers:   req.Answers,
		}, nil

	case model.TestTypeManual:
		if req.CourseID == nil {
			fields["course_id"] = "course_id is required for manual tests"
		}
		if req.Score == nil {
			fields["score"] = "score is required for manual tests"
		}
		if req.Total == nil {
			fields["total"] = "total is required for manual tests"
		}
		if len(fields) > 0 {
			return nil, fields
		}
		return model.ManualSubmission{
			CourseID:  *req.CourseID,
			SubjectID: *req.SubjectID,
			ChapterID: req.ChapterID,
			Score:     *req.Score,
			Total:     *req.Total,
			Details:   req.Details,
		}, nil
	}

	fields["test_type"] = "test_type must be one of chapter, free, master, manual"
	return nil, fields
}

// failSubmission maps pipeline errors onto response codes.
func failSubmission(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChapterNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrChapterMismatch):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrAttemptLimitReached):
		response.Fail(c, http.StatusForbidden, response.ErrAttemptLimitExceeded)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestionsFound)
	case errors.Is(err, service.ErrScoreExceedsTotal):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, context.DeadlineExceeded):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrStoreUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
