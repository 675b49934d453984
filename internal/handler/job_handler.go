package handler

import (
	"net/http"
	"strconv"

	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/service"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type JobHandler struct {
	jobService service.JobService
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewJobHandler(jobService service.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.ListOpenJobs)
		r.Post("/", h.PostJob)
		r.Get("/nearby", h.ListNearbyJobs)
		r.Get("/{id}", h.GetJob)
		r.Post("/{id}/apply", h.Apply)
		r.Post("/{id}/accept", h.AcceptProvider)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Post("/{id}/complete", h.Complete)
		r.Get("/{id}/transaction", h.GetTransaction)
	})
	r.Post("/applications/{id}/accept", h.AcceptApplication)
}

// POST /jobs
func (h *JobHandler) PostJob(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJobRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	job, err := h.jobService.PostJob(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Created(w, job)
}

// GET /jobs
func (h *JobHandler) ListOpenJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.ListOpenJobs(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, jobs)
}

// GET /jobs/nearby?lat=..&lng=..&radius=..
func (h *JobHandler) ListNearbyJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		utils.BadRequest(w, "lat must be a valid latitude")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		utils.BadRequest(w, "lng must be a valid longitude")
		return
	}
	var radius float64
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			utils.BadRequest(w, "radius must be a positive number")
			return
		}
	}

	jobs, err := h.jobService.ListNearbyJobs(r.Context(), lat, lng, radius)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, jobs)
}

// GET /jobs/{id}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, job)
}

// POST /jobs/{id}/apply
func (h *JobHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req models.ProviderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	app, err := h.jobService.Apply(r.Context(), chi.URLParam(r, "id"), req.ProviderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Created(w, app)
}

// POST /jobs/{id}/accept
func (h *JobHandler) AcceptProvider(w http.ResponseWriter, r *http.Request) {
	var req models.ProviderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	job, err := h.jobService.AcceptProvider(r.Context(), chi.URLParam(r, "id"), req.ProviderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, job)
}

// POST /applications/{id}/accept
func (h *JobHandler) AcceptApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.jobService.AcceptApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, app)
}

// PATCH /jobs/{id}/status
func (h *JobHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateJobStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	job, err := h.jobService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, job)
}

// POST /jobs/{id}/complete
// providerId is optional and defaults to the job's assigned provider.
func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteJobRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	result, err := h.jobService.Complete(r.Context(), chi.URLParam(r, "id"), req.ProviderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, result)
}

// GET /jobs/{id}/transaction
func (h *JobHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.jobService.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, txn)
}
