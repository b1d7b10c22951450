package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prepstack/prepcore-backend/internal/middleware"
	"github.com/prepstack/prepcore-backend/internal/model"
	"github.com/prepstack/prepcore-backend/internal/response"
	"github.com/prepstack/prepcore-backend/internal/service"
	"github.com/prepstack/prepcore-backend/internal/validator"
)

// ResultHandler handles a user's test result history.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListResults godoc
// GET /api/v1/results?test_type=&subject_id=&page=&per_page=
// Returns the caller's results, newest first.
func (h *ResultHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var filter model.ResultFilter
	if raw := c.Query("test_type"); raw != "" {
		tt := model.TestType(raw)
		if !tt.Valid() {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"test_type": "unknown test type"})
			return
		}
		filter.TestType = &tt
	}
	if raw := c.Query("subject_id"); raw != "" {
		subjectID, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		filter.SubjectID = &subjectID
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	results, pagination, err := h.resultService.List(c.Request.Context(), claims.UserID, filter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// UpdateResult godoc
// PUT /api/v1/results/:id
// Edits score/total on an owned manual result. Machine-graded results are
// immutable.
func (h *ResultHandler) UpdateResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.resultService.Update(c.Request.Context(), id, claims.UserID, *req.Score, *req.Total)
	if err != nil {
		failResultAccess(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// DeleteResult godoc
// DELETE /api/v1/results/:id
// Deletes an owned result; a chapter result also hands its attempt back.
func (h *ResultHandler) DeleteResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.resultService.Delete(c.Request.Context(), id, claims.UserID); err != nil {
		failResultAccess(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// failResultAccess maps result service errors onto response codes.
func failResultAccess(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrResultNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotResultOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotResultOwner)
	case errors.Is(err, service.ErrResultNotEditable):
		response.Fail(c, http.StatusForbidden, response.ErrResultNotEditable)
	case errors.Is(err, service.ErrScoreExceedsTotal):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, context.DeadlineExceeded):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrStoreUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
