package dto

import "github.com/google/uuid"

type CreateJobRequest struct {
	Title       string  `json:"title" binding:"required,max=150"`
	Description string  `json:"description" binding:"required,max=10000"`
	Location    string  `json:"location" binding:"max=100"`
	Salary      *string `json:"salary"`
}

type JobResponse struct {
	ID          uuid.UUID `json:"id"`
	CompanyID   uuid.UUID `json:"company_id"`
	CompanyName string    `json:"company_name,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Salary      *string   `json:"salary,omitempty"`
	CreatedAt   string    `json:"created_at"`
}
