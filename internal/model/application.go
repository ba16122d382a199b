package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application statuses. Any status may follow any other; there is
// deliberately no transition graph (see DESIGN.md).
const (
	StatusPending     = "pending"
	StatusReviewed    = "reviewed"
	StatusInterviewed = "interviewed"
	StatusHired       = "hired"
	StatusRejected    = "rejected"
)

// IsValidStatus reports whether s is a member of the status enum.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusInterviewed, StatusHired, StatusRejected:
		return true
	}
	return false
}

// Application links an applicant to a job. CompanyID is denormalized from the
// job at creation time and never re-derived afterwards; authorization always
// goes back to the job's owner instead. ResumeLink and CoverLetter are
// snapshots taken at submit time and are not re-synced if the applicant later
// updates their profile.
type Application struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_applicant" json:"job_id"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_applicant" json:"applicant_id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	Status        string     `gorm:"size:20;not null;default:pending" json:"status"`
	AppliedDate   time.Time  `gorm:"autoCreateTime" json:"applied_date"`
	InterviewDate *time.Time `json:"interview_date,omitempty"`
	ResumeLink    *string    `gorm:"type:text" json:"resume_link,omitempty"`
	CoverLetter   string     `gorm:"type:text" json:"cover_letter"`

	Job       *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Applicant *User `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}
