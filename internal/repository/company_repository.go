package repository

import (
	"context"
	"errors"

	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindByEmail(ctx context.Context, email string) (*model.Company, error)
	// DeleteCascade removes the company together with its jobs, all
	// applications on those jobs and all notifications addressed to it,
	// in a single transaction.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	err := r.db.WithContext(ctx).Create(company).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrConflict
	}
	return err
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) FindByEmail(ctx context.Context, email string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).First(&company, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var jobIDs []uuid.UUID
		if err := tx.Model(&model.Job{}).Where("company_id = ?", id).Pluck("id", &jobIDs).Error; err != nil {
			return err
		}

		if len(jobIDs) > 0 {
			if err := tx.Where("job_id IN ?", jobIDs).Delete(&model.Application{}).Error; err != nil {
				return err
			}
		}
		// Applications carry a denormalized company id; catch any stragglers.
		if err := tx.Where("company_id = ?", id).Delete(&model.Application{}).Error; err != nil {
			return err
		}

		if err := tx.Where("recipient_id = ? AND recipient_kind = ?", id, model.RoleCompany).
			Delete(&model.Notification{}).Error; err != nil {
			return err
		}

		if err := tx.Where("company_id = ?", id).Delete(&model.Job{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Company{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrNotFound
		}
		return nil
	})
}
