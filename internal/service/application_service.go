package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hirestack/hirestack-backend/internal/dto"
	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/internal/repository"
	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ApplicationService interface {
	SubmitApplication(ctx context.Context, applicantID uuid.UUID, req dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, companyID, applicationID uuid.UUID, status string) (*dto.ApplicationResponse, error)
	ScheduleInterview(ctx context.Context, companyID, applicationID uuid.UUID, interviewDate string) (*dto.ApplicationResponse, error)

	GetMyApplications(ctx context.Context, applicantID uuid.UUID) ([]dto.ApplicationResponse, error)
	GetApplicationsForJob(ctx context.Context, companyID, jobID uuid.UUID) ([]dto.ApplicationResponse, error)
	GetCompanyApplications(ctx context.Context, companyID uuid.UUID, filter dto.ApplicationFilter) (*dto.ApplicationListResponse, error)
	CountCompanyApplications(ctx context.Context, companyID uuid.UUID) (int64, error)
	GetApplicationByID(ctx context.Context, actorID uuid.UUID, actorRole string, applicationID uuid.UUID) (*dto.ApplicationResponse, error)
}

type applicationService struct {
	appRepo   repository.ApplicationRepository
	jobRepo   repository.JobRepository
	userRepo  repository.UserRepository
	adminRepo repository.AdminRepository
	notifier  NotificationService
	guard     *OwnershipGuard
	sanitizer *bluemonday.Policy
}

func NewApplicationService(
	appRepo repository.ApplicationRepository,
	jobRepo repository.JobRepository,
	userRepo repository.UserRepository,
	adminRepo repository.AdminRepository,
	notifier NotificationService,
	guard *OwnershipGuard,
) ApplicationService {
	return &applicationService{
		appRepo:   appRepo,
		jobRepo:   jobRepo,
		userRepo:  userRepo,
		adminRepo: adminRepo,
		notifier:  notifier,
		guard:     guard,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *applicationService) SubmitApplication(ctx context.Context, applicantID uuid.UUID, req dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error) {
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return nil, apperror.ErrInvalidInput
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	applicant, err := s.userRepo.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	exists, err := s.appRepo.ExistsForJobAndApplicant(ctx, jobID, applicantID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.ErrConflict
	}

	app := &model.Application{
		JobID:       jobID,
		ApplicantID: applicantID,
		// Denormalized from the job at creation time; authorization never
		// reads it back (see OwnershipGuard).
		CompanyID:   job.CompanyID,
		Status:      model.StatusPending,
		ResumeLink:  applicant.ResumeURL,
		CoverLetter: s.sanitizer.Sanitize(req.CoverLetter),
	}

	// The unique index still catches a concurrent duplicate between the
	// existence check and the insert.
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.fanout(func(ctx context.Context) {
		link := fmt.Sprintf("/applications/%s", app.ID)

		s.notify(ctx, job.CompanyID, model.RoleCompany,
			fmt.Sprintf("%s applied for %s", applicant.FullName, job.Title), link)

		adminIDs, err := s.adminRepo.FindAllIDs(ctx)
		if err != nil {
			log.Printf("failed to list admins for fan-out: %v", err)
		}
		for _, adminID := range adminIDs {
			s.notify(ctx, adminID, model.RoleAdmin,
				fmt.Sprintf("New application from %s for %s", applicant.FullName, job.Title), link)
		}

		s.notify(ctx, applicantID, model.RoleUser,
			fmt.Sprintf("Your application for %s was submitted", job.Title), "/my-applications")
	})

	resp := toApplicationResponse(app)
	resp.JobTitle = job.Title
	resp.ApplicantName = applicant.FullName
	return &resp, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, companyID, applicationID uuid.UUID, status string) (*dto.ApplicationResponse, error) {
	if !model.IsValidStatus(status) {
		return nil, apperror.ErrInvalidInput
	}

	// Any status may follow any other; only enum membership is checked.
	app, job, err := s.guard.AuthorizeApplication(ctx, applicationID, companyID)
	if err != nil {
		return nil, err
	}

	if err := s.appRepo.UpdateStatus(ctx, applicationID, status); err != nil {
		return nil, err
	}
	app.Status = status

	s.fanout(func(ctx context.Context) {
		s.notify(ctx, app.ApplicantID, model.RoleUser,
			fmt.Sprintf("Your application for %s was marked %s", job.Title, status), "/my-applications")
		s.notify(ctx, companyID, model.RoleCompany,
			fmt.Sprintf("Application for %s updated to %s", job.Title, status),
			fmt.Sprintf("/applications/%s", app.ID))
	})

	resp := toApplicationResponse(app)
	resp.JobTitle = job.Title
	return &resp, nil
}

func (s *applicationService) ScheduleInterview(ctx context.Context, companyID, applicationID uuid.UUID, interviewDate string) (*dto.ApplicationResponse, error) {
	when, err := parseInterviewDate(interviewDate)
	if err != nil {
		return nil, apperror.ErrInvalidInput
	}

	app, job, err := s.guard.AuthorizeApplication(ctx, applicationID, companyID)
	if err != nil {
		return nil, err
	}

	// Forces status to "interviewed" no matter what it was before.
	if err := s.appRepo.SetInterview(ctx, applicationID, when); err != nil {
		return nil, err
	}
	app.Status = model.StatusInterviewed
	app.InterviewDate = &when

	s.fanout(func(ctx context.Context) {
		s.notify(ctx, app.ApplicantID, model.RoleUser,
			fmt.Sprintf("Interview scheduled for %s on %s", job.Title, when.Format("Jan 2, 2006")),
			"/my-applications")
		s.notify(ctx, companyID, model.RoleCompany,
			fmt.Sprintf("Interview scheduled for %s", job.Title),
			fmt.Sprintf("/applications/%s", app.ID))
	})

	resp := toApplicationResponse(app)
	resp.JobTitle = job.Title
	return &resp, nil
}

func (s *applicationService) GetMyApplications(ctx context.Context, applicantID uuid.UUID) ([]dto.ApplicationResponse, error) {
	apps, err := s.appRepo.FindByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

func (s *applicationService) GetApplicationsForJob(ctx context.Context, companyID, jobID uuid.UUID) ([]dto.ApplicationResponse, error) {
	if _, err := s.guard.AuthorizeJob(ctx, jobID, companyID); err != nil {
		return nil, err
	}

	apps, err := s.appRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

func (s *applicationService) GetCompanyApplications(ctx context.Context, companyID uuid.UUID, filter dto.ApplicationFilter) (*dto.ApplicationListResponse, error) {
	// Company-scoped lists resolve the company's job ids first, then pull
	// applications by that set.
	jobIDs, err := s.jobRepo.FindIDsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	apps, err := s.appRepo.FindByJobIDs(ctx, jobIDs)
	if err != nil {
		return nil, err
	}

	responses := toApplicationResponses(apps)

	if filter.Status != "" {
		filtered := responses[:0]
		for _, r := range responses {
			if r.Status == filter.Status {
				filtered = append(filtered, r)
			}
		}
		responses = filtered
	}

	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		filtered := responses[:0]
		for _, r := range responses {
			if strings.Contains(strings.ToLower(r.ApplicantName), needle) ||
				strings.Contains(strings.ToLower(r.JobTitle), needle) {
				filtered = append(filtered, r)
			}
		}
		responses = filtered
	}

	return &dto.ApplicationListResponse{
		Data:  responses,
		Total: len(responses),
	}, nil
}

func (s *applicationService) CountCompanyApplications(ctx context.Context, companyID uuid.UUID) (int64, error) {
	jobIDs, err := s.jobRepo.FindIDsByCompany(ctx, companyID)
	if err != nil {
		return 0, err
	}
	return s.appRepo.CountByJobIDs(ctx, jobIDs)
}

func (s *applicationService) GetApplicationByID(ctx context.Context, actorID uuid.UUID, actorRole string, applicationID uuid.UUID) (*dto.ApplicationResponse, error) {
	switch actorRole {
	case model.RoleCompany:
		app, job, err := s.guard.AuthorizeApplication(ctx, applicationID, actorID)
		if err != nil {
			return nil, err
		}
		resp := toApplicationResponse(app)
		resp.JobTitle = job.Title
		return &resp, nil
	case model.RoleAdmin:
		app, err := s.appRepo.FindByID(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		resp := toApplicationResponse(app)
		return &resp, nil
	default:
		app, err := s.appRepo.FindByID(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		if app.ApplicantID != actorID {
			return nil, apperror.ErrForbidden
		}
		resp := toApplicationResponse(app)
		return &resp, nil
	}
}

// fanout runs fn on a detached goroutine with its own error boundary. The
// triggering request has already been answered by the time fn runs; nothing
// in here may affect the primary response.
func (s *applicationService) fanout(fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("notification fan-out panic: %v", r)
			}
		}()
		fn(context.Background())
	}()
}

func (s *applicationService) notify(ctx context.Context, recipientID uuid.UUID, kind, message, link string) {
	if err := s.notifier.Notify(ctx, recipientID, kind, message, link); err != nil {
		log.Printf("failed to notify %s %s: %v", kind, recipientID, err)
	}
}

func parseInterviewDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func toApplicationResponse(app *model.Application) dto.ApplicationResponse {
	resp := dto.ApplicationResponse{
		ID:          app.ID,
		JobID:       app.JobID,
		ApplicantID: app.ApplicantID,
		CompanyID:   app.CompanyID,
		Status:      app.Status,
		AppliedDate: app.AppliedDate.Format(time.RFC3339),
		ResumeLink:  app.ResumeLink,
		CoverLetter: app.CoverLetter,
	}

	if app.InterviewDate != nil {
		formatted := app.InterviewDate.Format(time.RFC3339)
		resp.InterviewDate = &formatted
	}
	if app.Job != nil {
		resp.JobTitle = app.Job.Title
	}
	if app.Applicant != nil {
		resp.ApplicantName = app.Applicant.FullName
	}
	return resp
}

func toApplicationResponses(apps []model.Application) []dto.ApplicationResponse {
	responses := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		responses = append(responses, toApplicationResponse(&apps[i]))
	}
	return responses
}
