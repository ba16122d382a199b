package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hirestack/hirestack-backend/internal/repository"
	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/google/uuid"
)

type CompanyService interface {
	// DeleteCompany removes a company and everything that hangs off it:
	// jobs, applications on those jobs, and notifications addressed to the
	// company. The delete is all-or-nothing.
	DeleteCompany(ctx context.Context, companyID uuid.UUID) error
}

type companyService struct {
	companyRepo repository.CompanyRepository
}

func NewCompanyService(companyRepo repository.CompanyRepository) CompanyService {
	return &companyService{companyRepo: companyRepo}
}

func (s *companyService) DeleteCompany(ctx context.Context, companyID uuid.UUID) error {
	if err := s.companyRepo.DeleteCascade(ctx, companyID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: cascading delete failed, all changes reverted: %v", apperror.ErrInternal, err)
	}
	return nil
}
