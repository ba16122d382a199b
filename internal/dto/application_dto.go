package dto

import (
	"github.com/google/uuid"
)

type SubmitApplicationRequest struct {
	JobID       string `json:"job_id" binding:"required,uuid"`
	CoverLetter string `json:"cover_letter" binding:"max=10000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ScheduleInterviewRequest struct {
	// RFC 3339 or plain date ("2025-03-01")
	InterviewDate string `json:"interview_date" binding:"required"`
}

// ApplicationFilter narrows company-scoped application lists. Search matches
// applicant name or job title as a substring.
type ApplicationFilter struct {
	Search string `form:"search"`
	Status string `form:"status"`
}

type ApplicationResponse struct {
	ID            uuid.UUID `json:"id"`
	JobID         uuid.UUID `json:"job_id"`
	JobTitle      string    `json:"job_title,omitempty"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	ApplicantName string    `json:"applicant_name,omitempty"`
	CompanyID     uuid.UUID `json:"company_id"`
	Status        string    `json:"status"`
	AppliedDate   string    `json:"applied_date"`
	InterviewDate *string   `json:"interview_date,omitempty"`
	ResumeLink    *string   `json:"resume_link,omitempty"`
	CoverLetter   string    `json:"cover_letter,omitempty"`
}

type ApplicationListResponse struct {
	Data  []ApplicationResponse `json:"data"`
	Total int                   `json:"total"`
}
