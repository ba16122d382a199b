package service

import (
	"context"

	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/internal/repository"
	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/google/uuid"
)

// OwnershipGuard is the shared authorization check for company mutations.
// Every endpoint that lets a company mutate a job or an application must go
// through it; the ownership of an application is re-derived from its job's
// owner, never from the application's denormalized company field.
type OwnershipGuard struct {
	jobRepo repository.JobRepository
	appRepo repository.ApplicationRepository
}

func NewOwnershipGuard(jobRepo repository.JobRepository, appRepo repository.ApplicationRepository) *OwnershipGuard {
	return &OwnershipGuard{
		jobRepo: jobRepo,
		appRepo: appRepo,
	}
}

// AuthorizeJob returns the job if companyID posted it.
func (g *OwnershipGuard) AuthorizeJob(ctx context.Context, jobID, companyID uuid.UUID) (*model.Job, error) {
	job, err := g.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.CompanyID != companyID {
		return nil, apperror.ErrForbidden
	}
	return job, nil
}

// AuthorizeApplication returns the application and its job if companyID owns
// the job the application targets.
func (g *OwnershipGuard) AuthorizeApplication(ctx context.Context, applicationID, companyID uuid.UUID) (*model.Application, *model.Job, error) {
	app, err := g.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}

	job, err := g.jobRepo.FindByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, err
	}

	if job.CompanyID != companyID {
		return nil, nil, apperror.ErrForbidden
	}
	return app, job, nil
}
