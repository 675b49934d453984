package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("duplicate record")

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	GetByJobAndProvider(ctx context.Context, jobID, providerID string) (*models.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = utils.GenerateID()
	}
	app.CreatedAt = time.Now()
	app.UpdatedAt = time.Now()
	app.Status = models.ApplicationStatusPending

	query := `
		INSERT INTO applications (id, job_id, provider_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		app.ID, app.JobID, app.ProviderID, app.Status, app.CreatedAt, app.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	query := `SELECT * FROM applications WHERE id = $1`
	err := r.db.GetContext(ctx, &app, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &app, err
}

func (r *applicationRepository) GetByJobAndProvider(ctx context.Context, jobID, providerID string) (*models.Application, error) {
	var app models.Application
	query := `SELECT * FROM applications WHERE job_id = $1 AND provider_id = $2`
	err := r.db.GetContext(ctx, &app, query, jobID, providerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &app, err
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID string) ([]*models.Application, error) {
	var apps []*models.Application
	query := `SELECT * FROM applications WHERE job_id = $1 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &apps, query, jobID)
	return apps, err
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

// isUniqueViolation reports a postgres 23505 error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
