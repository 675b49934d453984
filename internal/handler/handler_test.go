package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/realtime"
	"github.com/aditya/go-gigs/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Stubs embed the service interface so only the methods under test need
// an implementation.

type stubJobService struct {
	service.JobService
	job          *models.Job
	err          error
	lastJobID    string
	lastProvider string
	lastStatus   string
	lastRadius   float64
}

func (s *stubJobService) PostJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Job{ID: "job-1", Title: req.Title, Price: req.Price, Status: models.JobStatusOpen}, nil
}

func (s *stubJobService) GetJob(ctx context.Context, id string) (*models.JobDetails, error) {
	s.lastJobID = id
	if s.err != nil {
		return nil, s.err
	}
	return &models.JobDetails{Job: s.job}, nil
}

func (s *stubJobService) ListNearbyJobs(ctx context.Context, lat, lng, radiusKm float64) ([]*models.JobDetails, error) {
	s.lastRadius = radiusKm
	return []*models.JobDetails{}, nil
}

func (s *stubJobService) Apply(ctx context.Context, jobID, providerID string) (*models.Application, error) {
	s.lastJobID, s.lastProvider = jobID, providerID
	if s.err != nil {
		return nil, s.err
	}
	return &models.Application{ID: "app-1", JobID: jobID, ProviderID: providerID, Status: models.ApplicationStatusPending}, nil
}

func (s *stubJobService) UpdateStatus(ctx context.Context, jobID, status string) (*models.Job, error) {
	s.lastJobID, s.lastStatus = jobID, status
	if s.err != nil {
		return nil, s.err
	}
	return &models.Job{ID: jobID, Status: status}, nil
}

func (s *stubJobService) Complete(ctx context.Context, jobID, providerID string) (*models.CompletionResult, error) {
	s.lastJobID, s.lastProvider = jobID, providerID
	return &models.CompletionResult{
		Job:         &models.Job{ID: jobID, Status: models.JobStatusCompleted},
		Transaction: &models.Transaction{JobID: jobID, Amount: 100, PlatformFee: 10, ProviderAmount: 90},
	}, nil
}

type stubSavedJobService struct {
	service.SavedJobService
	saved bool
}

func (s *stubSavedJobService) Toggle(ctx context.Context, userID, jobID string) (bool, error) {
	s.saved = !s.saved
	return s.saved, nil
}

type stubNotificationService struct {
	service.NotificationService
	known map[string]bool
}

func (s *stubNotificationService) MarkRead(ctx context.Context, id string) error {
	if !s.known[id] {
		return apperrors.NotFound("notification")
	}
	return nil
}

type stubUploadService struct {
	service.UploadService
	got []byte
}

func (s *stubUploadService) UploadPhoto(ctx context.Context, data []byte) (string, error) {
	s.got = data
	return "/uploads/abc.png", nil
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, register func(chi.Router), method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	register(r)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body["message"])
	return body["error"]
}

func TestPostJob(t *testing.T) {
	h := NewJobHandler(&stubJobService{}, zap.NewNop())

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"title":"Fix sink","price":50,"clientId":"c1","latitude":37.7,"longitude":-122.4}`, http.StatusCreated},
		{"missing location", `{"title":"Fix sink","price":50,"clientId":"c1"}`, http.StatusBadRequest},
		{"bad latitude", `{"title":"Fix sink","price":50,"clientId":"c1","latitude":137.7,"longitude":-122.4}`, http.StatusBadRequest},
		{"zero price", `{"title":"Fix sink","price":0,"clientId":"c1","latitude":37.7,"longitude":-122.4}`, http.StatusBadRequest},
		{"too many photos", `{"title":"x","price":5,"clientId":"c1","latitude":1,"longitude":1,"photos":["1","2","3","4","5","6"]}`, http.StatusBadRequest},
		{"malformed", `{"title":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, h.RegisterRoutes, http.MethodPost, "/jobs", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusBadRequest {
				assert.Equal(t, apperrors.KindValidation, errorKind(t, rec))
			}
		})
	}
}

func TestApplyMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"ok", nil, http.StatusCreated, ""},
		{"duplicate", apperrors.AlreadyApplied(), http.StatusConflict, apperrors.KindConflict},
		{"closed", apperrors.JobNotOpen(), http.StatusConflict, apperrors.KindInvalidTransition},
		{"missing job", apperrors.NotFound("job"), http.StatusNotFound, apperrors.KindNotFound},
		{"db down", apperrors.Persistence("create application", errors.New("timeout")), http.StatusInternalServerError, apperrors.KindPersistence},
		{"plain error", errors.New("surprise"), http.StatusInternalServerError, apperrors.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubJobService{err: tt.err}
			h := NewJobHandler(svc, zap.NewNop())

			rec := serve(t, h.RegisterRoutes, http.MethodPost, "/jobs/job-7/apply", `{"providerId":"p1"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "job-7", svc.lastJobID)
			assert.Equal(t, "p1", svc.lastProvider)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, errorKind(t, rec))
			}
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := &stubJobService{}
	h := NewJobHandler(svc, zap.NewNop())

	rec := serve(t, h.RegisterRoutes, http.MethodPatch, "/jobs/job-1/status", `{"status":"CANCELLED"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.lastStatus)

	rec = serve(t, h.RegisterRoutes, http.MethodPatch, "/jobs/job-1/status", `{"status":"PAID"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.JobStatusPaid, svc.lastStatus)
}

func TestCompleteWithoutBody(t *testing.T) {
	svc := &stubJobService{}
	h := NewJobHandler(svc, zap.NewNop())

	rec := serve(t, h.RegisterRoutes, http.MethodPost, "/jobs/job-3/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "job-3", svc.lastJobID)
	assert.Empty(t, svc.lastProvider)

	var result models.CompletionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 10.0, result.Transaction.PlatformFee)
	assert.Equal(t, 90.0, result.Transaction.ProviderAmount)
}

func TestListNearbyJobsParams(t *testing.T) {
	svc := &stubJobService{}
	h := NewJobHandler(svc, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, serve(t, h.RegisterRoutes, http.MethodGet, "/jobs/nearby?lng=1", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, h.RegisterRoutes, http.MethodGet, "/jobs/nearby?lat=1&lng=1&radius=-3", "").Code)

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/jobs/nearby?lat=37.7&lng=-122.4&radius=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5.0, svc.lastRadius)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetJobNotFound(t *testing.T) {
	h := NewJobHandler(&stubJobService{err: apperrors.NotFound("job")}, zap.NewNop())

	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/jobs/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.KindNotFound, errorKind(t, rec))
}

func TestToggleSavedJob(t *testing.T) {
	h := NewSavedJobHandler(&stubSavedJobService{}, zap.NewNop())

	rec := serve(t, h.RegisterRoutes, http.MethodPost, "/saved-jobs", `{"userId":"u1","jobId":"j1"}`)
	assert.JSONEq(t, `{"saved":true}`, rec.Body.String())

	rec = serve(t, h.RegisterRoutes, http.MethodPost, "/saved-jobs", `{"userId":"u1","jobId":"j1"}`)
	assert.JSONEq(t, `{"saved":false}`, rec.Body.String())

	rec = serve(t, h.RegisterRoutes, http.MethodPost, "/saved-jobs", `{"userId":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkNotificationRead(t *testing.T) {
	h := NewNotificationHandler(&stubNotificationService{known: map[string]bool{"n1": true}}, zap.NewNop())

	rec := serve(t, h.RegisterRoutes, http.MethodPost, "/notifications/n1/read", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = serve(t, h.RegisterRoutes, http.MethodPost, "/notifications/n2/read", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	svc := &stubUploadService{}
	h := NewUploadHandler(svc, 16, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	body, contentType := multipartBody(t, "photo", []byte("0123456789"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"photoUrl":"/uploads/abc.png"}`, rec.Body.String())
	assert.Equal(t, []byte("0123456789"), svc.got)

	body, contentType = multipartBody(t, "other", []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPassesOversizedFileToService(t *testing.T) {
	svc := &stubUploadService{}
	h := NewUploadHandler(svc, 4, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	body, contentType := multipartBody(t, "photo", []byte("0123456789"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(httptest.NewRecorder(), req)

	// Truncated to limit+1 so the size check still trips.
	assert.Len(t, svc.got, 5)
}

func TestHealth(t *testing.T) {
	up := healthFunc(func(ctx context.Context) error { return nil })
	down := healthFunc(func(ctx context.Context) error { return errors.New("refused") })

	h := NewHealthHandler(map[string]Checker{"database": up, "redis": up})
	rec := serve(t, h.RegisterRoutes, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","services":{"database":"up","redis":"up"}}`, rec.Body.String())

	h = NewHealthHandler(map[string]Checker{"database": up, "redis": down})
	rec = serve(t, h.RegisterRoutes, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","services":{"database":"up","redis":"down"}}`, rec.Body.String())
}

func TestStreamEvents(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	h := NewStreamHandler(hub, nil, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/users/42/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hub.RoomSize("42") == 1 }, 2*time.Second, 10*time.Millisecond)

	evt, err := realtime.NewEvent(realtime.EventNotification, models.NotificationEvent{Message: "hi", Type: models.NotificationReview})
	require.NoError(t, err)
	require.NoError(t, hub.Publish(context.Background(), "42", evt))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))

	var got realtime.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &got))
	assert.Equal(t, realtime.EventNotification, got.Name)

	cancel()
	assert.Eventually(t, func() bool { return hub.RoomSize("42") == 0 }, 2*time.Second, 10*time.Millisecond)
}
