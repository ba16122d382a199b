package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	// Create inserts the application. A duplicate (job, applicant) pair
	// violates the unique index and is surfaced as apperror.ErrConflict.
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	ExistsForJobAndApplicant(ctx context.Context, jobID, applicantID uuid.UUID) (bool, error)
	FindByApplicant(ctx context.Context, applicantID uuid.UUID) ([]model.Application, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error)
	FindByJobIDs(ctx context.Context, jobIDs []uuid.UUID) ([]model.Application, error)
	CountByJobIDs(ctx context.Context, jobIDs []uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetInterview(ctx context.Context, id uuid.UUID, interviewDate time.Time) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *model.Application) error {
	err := r.db.WithContext(ctx).Create(app).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrConflict
	}
	return err
}

func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Applicant").
		First(&app, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ExistsForJobAndApplicant(ctx context.Context, jobID, applicantID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("job_id = ? AND applicant_id = ?", jobID, applicantID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepository) FindByApplicant(ctx context.Context, applicantID uuid.UUID) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("applicant_id = ?", applicantID).
		Order("applied_date desc").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Applicant").
		Where("job_id = ?", jobID).
		Order("applied_date desc").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) FindByJobIDs(ctx context.Context, jobIDs []uuid.UUID) ([]model.Application, error) {
	if len(jobIDs) == 0 {
		return []model.Application{}, nil
	}

	var apps []model.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("Applicant").
		Where("job_id IN ?", jobIDs).
		Order("applied_date desc").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) CountByJobIDs(ctx context.Context, jobIDs []uuid.UUID) (int64, error) {
	if len(jobIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("job_id IN ?", jobIDs).
		Count(&count).Error
	return count, err
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *applicationRepository) SetInterview(ctx context.Context, id uuid.UUID, interviewDate time.Time) error {
	// Scheduling an interview always forces the status along with the date.
	return r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"interview_date": interviewDate,
			"status":         model.StatusInterviewed,
		}).Error
}
