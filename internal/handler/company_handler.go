package handler

import (
	"net/http"

	"github.com/hirestack/hirestack-backend/internal/service"
	"github.com/hirestack/hirestack-backend/pkg/apperror"
	"github.com/hirestack/hirestack-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CompanyHandler struct {
	service service.CompanyService
}

func NewCompanyHandler(service service.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// DeleteCompany is admin-only (route-guarded). The cascade is atomic: on any
// failure nothing is deleted.
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	if err := h.service.DeleteCompany(c.Request.Context(), companyID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "company and related data deleted"})
}
