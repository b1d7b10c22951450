package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepstack/prepcore-backend/internal/model"
	"github.com/prepstack/prepcore-backend/internal/response"
	"github.com/prepstack/prepcore-backend/internal/service"
	"github.com/prepstack/prepcore-backend/internal/validator"
)

// AdminResultHandler handles administrative result entry.
type AdminResultHandler struct {
	resultService *service.ResultService
}

// NewAdminResultHandler creates a new AdminResultHandler.
func NewAdminResultHandler(resultService *service.ResultService) *AdminResultHandler {
	return &AdminResultHandler{resultService: resultService}
}

// AddManualResult godoc
// POST /api/v1/admin/results/manual
// Records a manual result for any user, bypassing ownership checks.
func (h *AdminResultHandler) AddManualResult(c *gin.Context) {
	var req model.AdminManualResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.resultService.AddManualByAdmin(c.Request.Context(), req)
	if err != nil {
		failResultAccess(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}
