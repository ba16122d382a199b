package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hirestack/hirestack-backend/internal/dto"
	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/google/uuid"
)

// In-memory fakes implementing the repository interfaces.

type fakeJobRepo struct {
	jobs map[uuid.UUID]*model.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*model.Job)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *model.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobRepo) FindAll(ctx context.Context, limit, offset int) ([]model.Job, error) {
	var jobs []model.Job
	for _, j := range f.jobs {
		jobs = append(jobs, *j)
	}
	return jobs, nil
}

func (f *fakeJobRepo) FindIDsByCompany(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, j := range f.jobs {
		if j.CompanyID == companyID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeJobRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.jobs[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(f.jobs, id)
	return nil
}

type fakeApplicationRepo struct {
	mu    sync.Mutex
	apps  map[uuid.UUID]*model.Application
	jobs  *fakeJobRepo
	users *fakeUserRepo
}

func newFakeApplicationRepo(jobs *fakeJobRepo, users *fakeUserRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{
		apps:  make(map[uuid.UUID]*model.Application),
		jobs:  jobs,
		users: users,
	}
}

// hydrate copies the row and attaches the associations the real repository
// preloads.
func (f *fakeApplicationRepo) hydrate(app *model.Application) model.Application {
	copied := *app
	if f.jobs != nil {
		if job, ok := f.jobs.jobs[app.JobID]; ok {
			copied.Job = job
		}
	}
	if f.users != nil {
		if user, ok := f.users.users[app.ApplicantID]; ok {
			copied.Applicant = user
		}
	}
	return copied
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app *model.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.apps {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return apperror.ErrConflict
		}
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.Status == "" {
		app.Status = model.StatusPending
	}
	app.AppliedDate = time.Now()
	copied := *app
	f.apps[app.ID] = &copied
	return nil
}

func (f *fakeApplicationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	app, ok := f.apps[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	copied := f.hydrate(app)
	return &copied, nil
}

func (f *fakeApplicationRepo) ExistsForJobAndApplicant(ctx context.Context, jobID, applicantID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, app := range f.apps {
		if app.JobID == jobID && app.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationRepo) FindByApplicant(ctx context.Context, applicantID uuid.UUID) ([]model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var apps []model.Application
	for _, app := range f.apps {
		if app.ApplicantID == applicantID {
			apps = append(apps, f.hydrate(app))
		}
	}
	return apps, nil
}

func (f *fakeApplicationRepo) FindByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var apps []model.Application
	for _, app := range f.apps {
		if app.JobID == jobID {
			apps = append(apps, f.hydrate(app))
		}
	}
	return apps, nil
}

func (f *fakeApplicationRepo) FindByJobIDs(ctx context.Context, jobIDs []uuid.UUID) ([]model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idSet := make(map[uuid.UUID]bool, len(jobIDs))
	for _, id := range jobIDs {
		idSet[id] = true
	}

	var apps []model.Application
	for _, app := range f.apps {
		if idSet[app.JobID] {
			apps = append(apps, f.hydrate(app))
		}
	}
	return apps, nil
}

func (f *fakeApplicationRepo) CountByJobIDs(ctx context.Context, jobIDs []uuid.UUID) (int64, error) {
	apps, _ := f.FindByJobIDs(ctx, jobIDs)
	return int64(len(apps)), nil
}

func (f *fakeApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	app, ok := f.apps[id]
	if !ok {
		return apperror.ErrNotFound
	}
	app.Status = status
	return nil
}

func (f *fakeApplicationRepo) SetInterview(ctx context.Context, id uuid.UUID, interviewDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	app, ok := f.apps[id]
	if !ok {
		return apperror.ErrNotFound
	}
	app.InterviewDate = &interviewDate
	app.Status = model.StatusInterviewed
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepo) FindAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id := range f.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeUserRepo) UpdateResumeURL(ctx context.Context, id uuid.UUID, url string) error {
	user, ok := f.users[id]
	if !ok {
		return apperror.ErrNotFound
	}
	user.ResumeURL = &url
	return nil
}

type fakeAdminRepo struct {
	ids []uuid.UUID
}

func (f *fakeAdminRepo) Create(ctx context.Context, admin *model.Admin) error { return nil }
func (f *fakeAdminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return nil, apperror.ErrNotFound
}
func (f *fakeAdminRepo) FindAllIDs(ctx context.Context) ([]uuid.UUID, error) { return f.ids, nil }
func (f *fakeAdminRepo) CountByEmail(ctx context.Context, email string) (int64, error) {
	return 0, nil
}

// fakeNotifier records Notify calls; the rest of the interface is inert.

type notifyCall struct {
	recipientID uuid.UUID
	kind        string
	message     string
	link        string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (f *fakeNotifier) Notify(ctx context.Context, recipientID uuid.UUID, recipientKind, message, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{recipientID, recipientKind, message, link})
	return nil
}

func (f *fakeNotifier) GetNotifications(ctx context.Context, recipientID uuid.UUID, kind string, limit, offset int) ([]model.Notification, error) {
	return nil, nil
}
func (f *fakeNotifier) UnreadCount(ctx context.Context, recipientID uuid.UUID, kind string) (int64, error) {
	return 0, nil
}
func (f *fakeNotifier) MarkAsRead(ctx context.Context, id, actorID uuid.UUID, actorKind string) error {
	return nil
}
func (f *fakeNotifier) MarkAllAsRead(ctx context.Context, actorID uuid.UUID, actorKind string) error {
	return nil
}
func (f *fakeNotifier) Delete(ctx context.Context, id, actorID uuid.UUID, actorKind string) error {
	return nil
}
func (f *fakeNotifier) DeleteAll(ctx context.Context, actorID uuid.UUID, actorKind string) error {
	return nil
}

func (f *fakeNotifier) snapshot() []notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifyCall(nil), f.calls...)
}

// waitForCalls polls until the notifier has seen at least n calls. Fan-out is
// asynchronous, so tests cannot assert immediately after the primary call.
func waitForCalls(t *testing.T, notifier *fakeNotifier, n int) []notifyCall {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		calls := notifier.snapshot()
		if len(calls) >= n {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected at least %d notify calls, got %d", n, len(notifier.snapshot()))
	return nil
}

type workflowFixture struct {
	svc       ApplicationService
	notifier  *fakeNotifier
	jobRepo   *fakeJobRepo
	appRepo   *fakeApplicationRepo
	userRepo  *fakeUserRepo
	companyID uuid.UUID
	adminID   uuid.UUID
	applicant *model.User
	job       *model.Job
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	jobRepo := newFakeJobRepo()
	userRepo := newFakeUserRepo()
	appRepo := newFakeApplicationRepo(jobRepo, userRepo)
	notifier := &fakeNotifier{}

	companyID := uuid.New()
	adminID := uuid.New()
	adminRepo := &fakeAdminRepo{ids: []uuid.UUID{adminID}}

	applicant := &model.User{FullName: "Ada Lovelace", Email: "ada@example.com"}
	if err := userRepo.Create(context.Background(), applicant); err != nil {
		t.Fatalf("seed applicant: %v", err)
	}

	job := &model.Job{CompanyID: companyID, Title: "Backend Engineer"}
	if err := jobRepo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	guard := NewOwnershipGuard(jobRepo, appRepo)
	svc := NewApplicationService(appRepo, jobRepo, userRepo, adminRepo, notifier, guard)

	return &workflowFixture{
		svc:       svc,
		notifier:  notifier,
		jobRepo:   jobRepo,
		appRepo:   appRepo,
		userRepo:  userRepo,
		companyID: companyID,
		adminID:   adminID,
		applicant: applicant,
		job:       job,
	}
}

func TestSubmitApplication(t *testing.T) {
	fx := newWorkflowFixture(t)

	resp, err := fx.svc.SubmitApplication(context.Background(), fx.applicant.ID, dto.SubmitApplicationRequest{
		JobID:       fx.job.ID.String(),
		CoverLetter: "I would love to work here.",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if resp.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", resp.Status, model.StatusPending)
	}
	if resp.CompanyID != fx.companyID {
		t.Errorf("company = %s, want %s (denormalized from job)", resp.CompanyID, fx.companyID)
	}

	// One notification each for the company, the admin pool, and the applicant.
	calls := waitForCalls(t, fx.notifier, 3)
	kinds := map[string]int{}
	for _, call := range calls {
		kinds[call.kind]++
	}
	if kinds[model.RoleCompany] != 1 || kinds[model.RoleAdmin] != 1 || kinds[model.RoleUser] != 1 {
		t.Errorf("unexpected fan-out distribution: %v", kinds)
	}
}

func TestSubmitApplicationDuplicate(t *testing.T) {
	fx := newWorkflowFixture(t)

	req := dto.SubmitApplicationRequest{JobID: fx.job.ID.String()}
	if _, err := fx.svc.SubmitApplication(context.Background(), fx.applicant.ID, req); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := fx.svc.SubmitApplication(context.Background(), fx.applicant.ID, req)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second submit err = %v, want ErrConflict", err)
	}
}

func TestSubmitApplicationJobNotFound(t *testing.T) {
	fx := newWorkflowFixture(t)

	_, err := fx.svc.SubmitApplication(context.Background(), fx.applicant.ID, dto.SubmitApplicationRequest{
		JobID: uuid.NewString(),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatusOwnershipReDerived(t *testing.T) {
	fx := newWorkflowFixture(t)

	resp, err := fx.svc.SubmitApplication(context.Background(), fx.applicant.ID, dto.SubmitApplicationRequest{
		JobID: fx.job.ID.String(),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Corrupt the denormalized company field. Ownership must still be
	// derived from the job's owner, so the real owner succeeds and the
	// impostor holding the stored company id does not.
	impostor := uuid.New()
	fx.appRepo.mu.Lock()
	fx.appRepo.apps[resp.ID].CompanyID = impostor
	fx.appRepo.mu.Unlock()

	if _, err := fx.svc.UpdateStatus(context.Background(), impostor, resp.ID, model.StatusReviewed); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("impostor err = %v, want ErrForbidden", err)
	}

	updated, err := fx.svc.UpdateStatus(context.Background(), fx.companyID, resp.ID, model.StatusHired)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Status != model.StatusHired {
		t.Errorf("status = %q, want %q", updated.Status, model.StatusHired)
	}

	// Applicant must hear about it, with the status in the message.
	calls := waitForCalls(t, fx.notifier, 5)
	found := false
	for _, call := range calls {
		if call.kind == model.RoleUser && call.recipientID == fx.applicant.ID &&
			strings.Contains(call.message, model.StatusHired) {
			found = true
		}
	}
	if !found {
		t.Errorf("no applicant notification mentioning %q in %v", model.StatusHired, calls)
	}
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	fx := newWorkflowFixture(t)

	_, err := fx.svc.UpdateStatus(context.Background(), fx.companyID, uuid.New(), "archived")
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestScheduleInterviewForcesStatus(t *testing.T) {
	fx := newWorkflowFixture(t)

	resp, err := fx.svc.SubmitApplication(context.Background(), fx.applicant.ID, dto.SubmitApplicationRequest{
		JobID: fx.job.ID.String(),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := fx.svc.ScheduleInterview(context.Background(), fx.companyID, resp.ID, "2025-03-01")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if updated.Status != model.StatusInterviewed {
		t.Errorf("status = %q, want %q", updated.Status, model.StatusInterviewed)
	}
	if updated.InterviewDate == nil {
		t.Fatal("interview date not set")
	}

	stored, _ := fx.appRepo.FindByID(context.Background(), resp.ID)
	if stored.Status != model.StatusInterviewed {
		t.Errorf("stored status = %q, want %q", stored.Status, model.StatusInterviewed)
	}
	if stored.InterviewDate == nil || stored.InterviewDate.Format("2006-01-02") != "2025-03-01" {
		t.Errorf("stored interview date = %v, want 2025-03-01", stored.InterviewDate)
	}
}

func TestScheduleInterviewBadDate(t *testing.T) {
	fx := newWorkflowFixture(t)

	_, err := fx.svc.ScheduleInterview(context.Background(), fx.companyID, uuid.New(), "next tuesday")
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetCompanyApplicationsFilter(t *testing.T) {
	fx := newWorkflowFixture(t)

	second := &model.User{FullName: "Grace Hopper", Email: "grace@example.com"}
	if err := fx.userRepo.Create(context.Background(), second); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	for _, u := range []*model.User{fx.applicant, second} {
		if _, err := fx.svc.SubmitApplication(context.Background(), u.ID, dto.SubmitApplicationRequest{
			JobID: fx.job.ID.String(),
		}); err != nil {
			t.Fatalf("submit for %s: %v", u.FullName, err)
		}
	}

	all, err := fx.svc.GetCompanyApplications(context.Background(), fx.companyID, dto.ApplicationFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all.Total != 2 {
		t.Fatalf("total = %d, want 2", all.Total)
	}

	filtered, err := fx.svc.GetCompanyApplications(context.Background(), fx.companyID, dto.ApplicationFilter{Search: "grace"})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if filtered.Total != 1 || filtered.Data[0].ApplicantName != "Grace Hopper" {
		t.Fatalf("search filter returned %v", filtered.Data)
	}

	byStatus, err := fx.svc.GetCompanyApplications(context.Background(), fx.companyID, dto.ApplicationFilter{Status: model.StatusHired})
	if err != nil {
		t.Fatalf("status list: %v", err)
	}
	if byStatus.Total != 0 {
		t.Fatalf("status filter returned %d, want 0", byStatus.Total)
	}
}

func TestGetApplicationByIDAccess(t *testing.T) {
	fx := newWorkflowFixture(t)

	resp, err := fx.svc.SubmitApplication(context.Background(), fx.applicant.ID, dto.SubmitApplicationRequest{
		JobID: fx.job.ID.String(),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := fx.svc.GetApplicationByID(context.Background(), fx.applicant.ID, model.RoleUser, resp.ID); err != nil {
		t.Errorf("owner applicant: %v", err)
	}
	if _, err := fx.svc.GetApplicationByID(context.Background(), uuid.New(), model.RoleUser, resp.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("foreign applicant err = %v, want ErrForbidden", err)
	}
	if _, err := fx.svc.GetApplicationByID(context.Background(), fx.companyID, model.RoleCompany, resp.ID); err != nil {
		t.Errorf("owning company: %v", err)
	}
	if _, err := fx.svc.GetApplicationByID(context.Background(), uuid.New(), model.RoleCompany, resp.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("foreign company err = %v, want ErrForbidden", err)
	}
	if _, err := fx.svc.GetApplicationByID(context.Background(), fx.adminID, model.RoleAdmin, resp.ID); err != nil {
		t.Errorf("admin: %v", err)
	}
}
