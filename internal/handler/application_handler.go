package handler

import (
	"net/http"

	"github.com/hirestack/hirestack-backend/internal/dto"
	"github.com/hirestack/hirestack-backend/internal/service"
	"github.com/hirestack/hirestack-backend/pkg/apperror"
	"github.com/hirestack/hirestack-backend/pkg/response"
	"github.com/hirestack/hirestack-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	service service.ApplicationService
}

func NewApplicationHandler(service service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	applicantID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	app, err := h.service.SubmitApplication(c.Request.Context(), applicantID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	// Notification fan-out runs detached; the response goes out now.
	c.JSON(http.StatusCreated, gin.H{"data": app})
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	companyID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	app, err := h.service.UpdateStatus(c.Request.Context(), companyID, applicationID, req.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (h *ApplicationHandler) ScheduleInterview(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	var req dto.ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	companyID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	app, err := h.service.ScheduleInterview(c.Request.Context(), companyID, applicationID, req.InterviewDate)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	applicantID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	apps, err := h.service.GetMyApplications(c.Request.Context(), applicantID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": apps})
}

func (h *ApplicationHandler) GetApplicationsForJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	companyID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	apps, err := h.service.GetApplicationsForJob(c.Request.Context(), companyID, jobID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": apps})
}

func (h *ApplicationHandler) GetCompanyApplications(c *gin.Context) {
	var filter dto.ApplicationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	companyID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	apps, err := h.service.GetCompanyApplications(c.Request.Context(), companyID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) CountCompanyApplications(c *gin.Context) {
	companyID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.service.CountCompanyApplications(c.Request.Context(), companyID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *ApplicationHandler) GetApplicationByID(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	actorID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	app, err := h.service.GetApplicationByID(c.Request.Context(), actorID, response.GetActorRole(c), applicationID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": app})
}
