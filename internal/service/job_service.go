package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aditya/go-gigs/internal/cache"
	"github.com/aditya/go-gigs/internal/config"
	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/repository"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type JobService interface {
	PostJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error)
	ListOpenJobs(ctx context.Context) ([]*models.JobDetails, error)
	ListNearbyJobs(ctx context.Context, lat, lng, radiusKm float64) ([]*models.JobDetails, error)
	GetJob(ctx context.Context, id string) (*models.JobDetails, error)
	Apply(ctx context.Context, jobID, providerID string) (*models.Application, error)
	AcceptProvider(ctx context.Context, jobID, providerID string) (*models.Job, error)
	AcceptApplication(ctx context.Context, applicationID string) (*models.Application, error)
	UpdateStatus(ctx context.Context, jobID, status string) (*models.Job, error)
	Complete(ctx context.Context, jobID, providerID string) (*models.CompletionResult, error)
	GetTransaction(ctx context.Context, jobID string) (*models.Transaction, error)
}

type JobServiceConfig struct {
	TransitionPolicy string
	NearbyRadiusKM   float64
}

type jobService struct {
	jobRepo         repository.JobRepository
	applicationRepo repository.ApplicationRepository
	userRepo        repository.UserRepository
	transactionRepo repository.TransactionRepository
	fees            FeeService
	notifier        NotificationService
	stats           StatsDispatcher
	jobCache        cache.JobLocationCache
	cfg             JobServiceConfig
	logger          *zap.Logger
}

// NewJobService wires the job lifecycle. jobCache may be nil, in which case
// nearby search scans open jobs in the database.
func NewJobService(
	jobRepo repository.JobRepository,
	applicationRepo repository.ApplicationRepository,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
	fees FeeService,
	notifier NotificationService,
	stats StatsDispatcher,
	jobCache cache.JobLocationCache,
	cfg JobServiceConfig,
	logger *zap.Logger,
) JobService {
	if cfg.TransitionPolicy == "" {
		cfg.TransitionPolicy = config.TransitionPolicyStrict
	}
	return &jobService{
		jobRepo:         jobRepo,
		applicationRepo: applicationRepo,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		fees:            fees,
		notifier:        notifier,
		stats:           stats,
		jobCache:        jobCache,
		cfg:             cfg,
		logger:          logger,
	}
}

func (s *jobService) strict() bool {
	return s.cfg.TransitionPolicy != config.TransitionPolicyPermissive
}

func (s *jobService) PostJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error) {
	if req.Price <= 0 {
		return nil, apperrors.Validation("price must be greater than zero")
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, apperrors.Validation("location is required")
	}

	client, err := s.userRepo.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, apperrors.Persistence("fetch client", err)
	}
	if client == nil {
		return nil, apperrors.NotFound("client")
	}

	job := &models.Job{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		ClientID:      req.ClientID,
		Latitude:      *req.Latitude,
		Longitude:     *req.Longitude,
		ZipCode:       req.ZipCode,
		Category:      req.Category,
		Tags:          req.Tags,
		IsUrgent:      req.IsUrgent,
		Photos:        pq.StringArray(req.Photos),
		ScheduledDate: req.ScheduledDate,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, apperrors.Persistence("create job", err)
	}

	s.indexJob(ctx, job)
	return job, nil
}

func (s *jobService) ListOpenJobs(ctx context.Context) ([]*models.JobDetails, error) {
	jobs, err := s.jobRepo.ListByStatus(ctx, models.JobStatusOpen)
	if err != nil {
		return nil, apperrors.Persistence("fetch jobs", err)
	}
	return s.withClients(ctx, jobs, nil)
}

// ListNearbyJobs returns open jobs within radiusKm, closest first.
func (s *jobService) ListNearbyJobs(ctx context.Context, lat, lng, radiusKm float64) ([]*models.JobDetails, error) {
	if radiusKm <= 0 {
		radiusKm = s.cfg.NearbyRadiusKM
	}

	if s.jobCache != nil {
		details, err := s.nearbyFromCache(ctx, lat, lng, radiusKm)
		if err == nil {
			return details, nil
		}
		s.logger.Warn("geo cache lookup failed, scanning database", zap.Error(err))
	}

	jobs, err := s.jobRepo.ListByStatus(ctx, models.JobStatusOpen)
	if err != nil {
		return nil, apperrors.Persistence("fetch jobs", err)
	}

	distances := make(map[string]float64, len(jobs))
	nearby := make([]*models.Job, 0, len(jobs))
	for _, job := range jobs {
		d := distanceKM(lat, lng, job.Latitude, job.Longitude)
		if d <= radiusKm {
			distances[job.ID] = d
			nearby = append(nearby, job)
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return distances[nearby[i].ID] < distances[nearby[j].ID]
	})

	return s.withClients(ctx, nearby, distances)
}

func (s *jobService) nearbyFromCache(ctx context.Context, lat, lng, radiusKm float64) ([]*models.JobDetails, error) {
	hits, err := s.jobCache.GetNearbyJobs(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hits))
	distances := make(map[string]float64, len(hits))
	for _, h := range hits {
		ids = append(ids, h.JobID)
		distances[h.JobID] = h.Distance
	}

	jobs, err := s.jobRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Persistence("fetch jobs", err)
	}
	byID := make(map[string]*models.Job, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}

	ordered := make([]*models.Job, 0, len(jobs))
	for _, id := range ids {
		if job, ok := byID[id]; ok && job.Status == models.JobStatusOpen {
			ordered = append(ordered, job)
		}
	}
	return s.withClients(ctx, ordered, distances)
}

func (s *jobService) GetJob(ctx context.Context, id string) (*models.JobDetails, error) {
	job, err := s.getJob(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &models.JobDetails{Job: job}

	ids := []string{job.ClientID}
	if job.HasProvider() {
		ids = append(ids, *job.ProviderID)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Persistence("fetch job participants", err)
	}
	for _, u := range users {
		if u.ID == job.ClientID {
			details.Client = u
		}
		if job.HasProvider() && u.ID == *job.ProviderID {
			details.Provider = u
		}
	}

	apps, err := s.applicationRepo.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, apperrors.Persistence("fetch applications", err)
	}
	details.Applications = apps

	return details, nil
}

func (s *jobService) Apply(ctx context.Context, jobID, providerID string) (*models.Application, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperrors.JobNotOpen()
	}

	provider, err := s.userRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, apperrors.Persistence("fetch provider", err)
	}
	if provider == nil {
		return nil, apperrors.NotFound("provider")
	}

	existing, err := s.applicationRepo.GetByJobAndProvider(ctx, jobID, providerID)
	if err != nil {
		return nil, apperrors.Persistence("fetch application", err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyApplied()
	}

	app := &models.Application{JobID: jobID, ProviderID: providerID}
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.AlreadyApplied()
		}
		return nil, apperrors.Persistence("create application", err)
	}

	s.notifier.Notify(ctx, job.ClientID,
		fmt.Sprintf("%s applied to \"%s\"", provider.Name, job.Title),
		models.NotificationApplication, job.ID)

	return app, nil
}

func (s *jobService) AcceptProvider(ctx context.Context, jobID, providerID string) (*models.Job, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.transitionToInProgress(ctx, job, providerID); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) AcceptApplication(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, apperrors.Persistence("fetch application", err)
	}
	if app == nil {
		return nil, apperrors.NotFound("application")
	}

	job, err := s.getJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	// Check before touching the application so a rejected accept leaves it PENDING.
	if s.strict() && !job.CanTransitionTo(models.JobStatusInProgress) {
		return nil, apperrors.InvalidTransition(job.Status, models.JobStatusInProgress)
	}

	if err := s.applicationRepo.UpdateStatus(ctx, app.ID, models.ApplicationStatusAccepted); err != nil {
		return nil, apperrors.Persistence("accept application", err)
	}
	app.Status = models.ApplicationStatusAccepted

	if err := s.transitionToInProgress(ctx, job, app.ProviderID); err != nil {
		return nil, err
	}
	return app, nil
}

// transitionToInProgress is the single path by which a job gets its
// provider. Under the permissive policy a re-accept overwrites the provider.
func (s *jobService) transitionToInProgress(ctx context.Context, job *models.Job, providerID string) error {
	if providerID == "" {
		return apperrors.Validation("providerId is required")
	}
	if s.strict() && !job.CanTransitionTo(models.JobStatusInProgress) {
		return apperrors.InvalidTransition(job.Status, models.JobStatusInProgress)
	}

	if err := s.jobRepo.AssignProvider(ctx, job.ID, providerID, models.JobStatusInProgress); err != nil {
		return apperrors.Persistence("assign provider", err)
	}
	job.ProviderID = &providerID
	job.Status = models.JobStatusInProgress

	s.unindexJob(ctx, job.ID)
	s.notifier.Notify(ctx, providerID,
		fmt.Sprintf("You have been hired for \"%s\"", job.Title),
		models.NotificationJobAccepted, job.ID)
	return nil
}

func (s *jobService) UpdateStatus(ctx context.Context, jobID, status string) (*models.Job, error) {
	if !models.IsValidJobStatus(status) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid status %q", status))
	}

	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if s.strict() {
		if !job.CanTransitionTo(status) {
			return nil, apperrors.InvalidTransition(job.Status, status)
		}
		if status == models.JobStatusCompleted && !job.HasProvider() {
			return nil, apperrors.Validation("job has no provider")
		}
	}

	if err := s.jobRepo.UpdateStatus(ctx, job.ID, status); err != nil {
		return nil, apperrors.Persistence("update job status", err)
	}
	job.Status = status

	if status == models.JobStatusOpen {
		s.indexJob(ctx, job)
	} else {
		s.unindexJob(ctx, job.ID)
	}

	message := fmt.Sprintf("\"%s\" is now %s", job.Title, status)
	s.notifier.Notify(ctx, job.ClientID, message, models.NotificationJobStatus, job.ID)
	if job.HasProvider() {
		s.notifier.Notify(ctx, *job.ProviderID, message, models.NotificationJobStatus, job.ID)
	}

	return job, nil
}

// Complete records the payout split and marks the job COMPLETED. The
// reputation refresh and client notification that follow cannot fail it.
func (s *jobService) Complete(ctx context.Context, jobID, providerID string) (*models.CompletionResult, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if providerID == "" && job.HasProvider() {
		providerID = *job.ProviderID
	}
	if providerID == "" {
		return nil, apperrors.Validation("providerId is required")
	}

	if s.strict() {
		if !job.CanTransitionTo(models.JobStatusCompleted) {
			return nil, apperrors.InvalidTransition(job.Status, models.JobStatusCompleted)
		}
		if !job.HasProvider() {
			return nil, apperrors.Validation("job has no provider")
		}
		if *job.ProviderID != providerID {
			return nil, apperrors.Validation("provider is not assigned to this job")
		}
	}

	split := s.fees.Split(job.Price)
	txn := &models.Transaction{
		JobID:          job.ID,
		PayerID:        job.ClientID,
		PayeeID:        providerID,
		Amount:         split.Amount,
		PlatformFee:    split.PlatformFee,
		ProviderAmount: split.ProviderAmount,
	}
	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.AlreadySettled()
		}
		return nil, apperrors.Persistence("create transaction", err)
	}

	// Record the payee on the job so completed-job counts find it.
	if job.HasProvider() && *job.ProviderID == providerID {
		err = s.jobRepo.UpdateStatus(ctx, job.ID, models.JobStatusCompleted)
	} else {
		err = s.jobRepo.AssignProvider(ctx, job.ID, providerID, models.JobStatusCompleted)
	}
	if err != nil {
		return nil, apperrors.Persistence("complete job", err)
	}
	job.Status = models.JobStatusCompleted
	job.ProviderID = &providerID
	s.unindexJob(ctx, job.ID)

	s.stats.Dispatch(ctx, providerID)
	s.notifier.Notify(ctx, job.ClientID,
		fmt.Sprintf("\"%s\" has been completed", job.Title),
		models.NotificationJobCompleted, job.ID)

	return &models.CompletionResult{Job: job, Transaction: txn}, nil
}

func (s *jobService) GetTransaction(ctx context.Context, jobID string) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, apperrors.Persistence("fetch transaction", err)
	}
	if txn == nil {
		return nil, apperrors.NotFound("transaction")
	}
	return txn, nil
}

func (s *jobService) getJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Persistence("fetch job", err)
	}
	if job == nil {
		return nil, apperrors.NotFound("job")
	}
	return job, nil
}

// withClients attaches each job's client. distances may be nil.
func (s *jobService) withClients(ctx context.Context, jobs []*models.Job, distances map[string]float64) ([]*models.JobDetails, error) {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		if !seen[job.ClientID] {
			seen[job.ClientID] = true
			ids = append(ids, job.ClientID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Persistence("fetch clients", err)
	}
	clients := make(map[string]*models.User, len(users))
	for _, u := range users {
		clients[u.ID] = u
	}

	details := make([]*models.JobDetails, 0, len(jobs))
	for _, job := range jobs {
		d := &models.JobDetails{Job: job, Client: clients[job.ClientID]}
		if dist, ok := distances[job.ID]; ok {
			d.Distance = &dist
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *jobService) indexJob(ctx context.Context, job *models.Job) {
	if s.jobCache == nil {
		return
	}
	if err := s.jobCache.AddJob(ctx, job.ID, job.Latitude, job.Longitude); err != nil {
		s.logger.Warn("failed to index job location", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func (s *jobService) unindexJob(ctx context.Context, jobID string) {
	if s.jobCache == nil {
		return
	}
	if err := s.jobCache.RemoveJob(ctx, jobID); err != nil {
		s.logger.Warn("failed to remove job location", zap.String("job_id", jobID), zap.Error(err))
	}
}
