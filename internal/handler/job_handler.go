package handler

import (
	"net/http"
	"strconv"

	"github.com/hirestack/hirestack-backend/internal/dto"
	"github.com/hirestack/hirestack-backend/internal/service"
	"github.com/hirestack/hirestack-backend/pkg/apperror"
	"github.com/hirestack/hirestack-backend/pkg/response"
	"github.com/hirestack/hirestack-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type JobHandler struct {
	service service.JobService
}

func NewJobHandler(service service.JobService) *JobHandler {
	return &JobHandler{service: service}
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	companyID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), companyID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": job})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), jobID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job})
}

func (h *JobHandler) GetAllJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	jobs, err := h.service.GetAllJobs(c.Request.Context(), limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
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

	if err := h.service.DeleteJob(c.Request.Context(), companyID, jobID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job deleted"})
}
