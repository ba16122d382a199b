package repository

import (
	"context"
	"errors"

	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.Job, error)
	FindIDsByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
	// DeleteCascade removes the job and its applications in one transaction.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).Preload("Company").First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) FindAll(ctx context.Context, limit, offset int) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Preload("Company").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	return jobs, err
}

func (r *jobRepository) FindIDsByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Job{}).Where("company_id = ?", companyID).Pluck("id", &ids).Error
	return ids, err
}

func (r *jobRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&model.Application{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Job{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrNotFound
		}
		return nil
	})
}
