package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hirestack/hirestack-backend/internal/dto"
	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type JobService interface {
	CreateJob(ctx context.Context, companyID uuid.UUID, req dto.CreateJobRequest) (*dto.JobResponse, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*dto.JobResponse, error)
	GetAllJobs(ctx context.Context, limit, offset int) ([]dto.JobResponse, error)
	DeleteJob(ctx context.Context, companyID, jobID uuid.UUID) error
}

type jobService struct {
	jobRepo     repository.JobRepository
	companyRepo repository.CompanyRepository
	userRepo    repository.UserRepository
	adminRepo   repository.AdminRepository
	notifier    NotificationService
	guard       *OwnershipGuard
	search      SearchService
	sanitizer   *bluemonday.Policy
}

func NewJobService(
	jobRepo repository.JobRepository,
	companyRepo repository.CompanyRepository,
	userRepo repository.UserRepository,
	adminRepo repository.AdminRepository,
	notifier NotificationService,
	guard *OwnershipGuard,
	search SearchService,
) JobService {
	return &jobService{
		jobRepo:     jobRepo,
		companyRepo: companyRepo,
		userRepo:    userRepo,
		adminRepo:   adminRepo,
		notifier:    notifier,
		guard:       guard,
		search:      search,
		sanitizer:   bluemonday.UGCPolicy(),
	}
}

func (s *jobService) CreateJob(ctx context.Context, companyID uuid.UUID, req dto.CreateJobRequest) (*dto.JobResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	job := &model.Job{
		CompanyID:   companyID,
		Title:       req.Title,
		Description: s.sanitizer.Sanitize(req.Description),
		Location:    req.Location,
		Salary:      req.Salary,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	// Search indexing is best-effort; the posting exists regardless.
	if s.search != nil {
		if err := s.search.IndexJob(job); err != nil {
			log.Printf("failed to index job %s: %v", job.ID, err)
		}
	}

	// A new posting is announced to every admin, every applicant, and the
	// posting company itself. One notify per recipient, no transaction
	// across them.
	s.fanoutNewJob(job, company.Name)

	resp := toJobResponse(job)
	resp.CompanyName = company.Name
	return &resp, nil
}

func (s *jobService) GetJob(ctx context.Context, jobID uuid.UUID) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	resp := toJobResponse(job)
	return &resp, nil
}

func (s *jobService) GetAllJobs(ctx context.Context, limit, offset int) ([]dto.JobResponse, error) {
	jobs, err := s.jobRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, toJobResponse(&jobs[i]))
	}
	return responses, nil
}

func (s *jobService) DeleteJob(ctx context.Context, companyID, jobID uuid.UUID) error {
	if _, err := s.guard.AuthorizeJob(ctx, jobID, companyID); err != nil {
		return err
	}

	if err := s.jobRepo.DeleteCascade(ctx, jobID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteJob(jobID.String()); err != nil {
			log.Printf("failed to de-index job %s: %v", jobID, err)
		}
	}
	return nil
}

func (s *jobService) fanoutNewJob(job *model.Job, companyName string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("job fan-out panic: %v", r)
			}
		}()

		ctx := context.Background()
		message := fmt.Sprintf("%s posted a new job: %s", companyName, job.Title)
		link := fmt.Sprintf("/jobs/%s", job.ID)

		adminIDs, err := s.adminRepo.FindAllIDs(ctx)
		if err != nil {
			log.Printf("failed to list admins for fan-out: %v", err)
		}
		for _, adminID := range adminIDs {
			s.notify(ctx, adminID, model.RoleAdmin, message, link)
		}

		userIDs, err := s.userRepo.FindAllIDs(ctx)
		if err != nil {
			log.Printf("failed to list users for fan-out: %v", err)
		}
		for _, userID := range userIDs {
			s.notify(ctx, userID, model.RoleUser, message, link)
		}

		s.notify(ctx, job.CompanyID, model.RoleCompany,
			fmt.Sprintf("Your job %s is now live", job.Title), link)
	}()
}

func (s *jobService) notify(ctx context.Context, recipientID uuid.UUID, kind, message, link string) {
	if err := s.notifier.Notify(ctx, recipientID, kind, message, link); err != nil {
		log.Printf("failed to notify %s %s: %v", kind, recipientID, err)
	}
}

func toJobResponse(job *model.Job) dto.JobResponse {
	resp := dto.JobResponse{
		ID:          job.ID,
		CompanyID:   job.CompanyID,
		Title:       job.Title,
		Description: job.Description,
		Location:    job.Location,
		Salary:      job.Salary,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
	}
	if job.Company != nil {
		resp.CompanyName = job.Company.Name
	}
	return resp
}
