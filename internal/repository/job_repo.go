package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Job, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Job, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AssignProvider(ctx context.Context, jobID, providerID, status string) error
	CountCompletedByProvider(ctx context.Context, providerID string) (int, error)
}

type jobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = utils.GenerateID()
	}
	if job.Photos == nil {
		job.Photos = pq.StringArray{}
	}
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	job.Status = models.JobStatusOpen

	query := `
		INSERT INTO jobs (id, title, description, price, client_id, status,
			latitude, longitude, zip_code, category, tags, is_urgent, photos,
			scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Title, job.Description, job.Price, job.ClientID, job.Status,
		job.Latitude, job.Longitude, job.ZipCode, job.Category, job.Tags, job.IsUrgent, job.Photos,
		job.ScheduledDate, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	query := `SELECT * FROM jobs WHERE id = $1`
	err := r.db.GetContext(ctx, &job, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &job, err
}

func (r *jobRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Job, error) {
	if len(ids) == 0 {
		return []*models.Job{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM jobs WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var jobs []*models.Job
	err = r.db.SelectContext(ctx, &jobs, r.db.Rebind(query), args...)
	return jobs, err
}

func (r *jobRepository) ListByStatus(ctx context.Context, status string) ([]*models.Job, error) {
	var jobs []*models.Job
	query := `SELECT * FROM jobs WHERE status = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &jobs, query, status)
	return jobs, err
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (r *jobRepository) AssignProvider(ctx context.Context, jobID, providerID, status string) error {
	query := `UPDATE jobs SET provider_id = $1, status = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, providerID, status, time.Now(), jobID)
	return err
}

func (r *jobRepository) CountCompletedByProvider(ctx context.Context, providerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM jobs WHERE provider_id = $1 AND status = $2`
	err := r.db.GetContext(ctx, &count, query, providerID, models.JobStatusCompleted)
	return count, err
}
