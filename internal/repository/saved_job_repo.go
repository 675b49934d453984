package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/jmoiron/sqlx"
)

type SavedJobRepository interface {
	Create(ctx context.Context, saved *models.SavedJob) error
	Get(ctx context.Context, userID, jobID string) (*models.SavedJob, error)
	Delete(ctx context.Context, id string) error
	ListJobIDs(ctx context.Context, userID string) ([]string, error)
}

type savedJobRepository struct {
	db *sqlx.DB
}

func NewSavedJobRepository(db *sqlx.DB) SavedJobRepository {
	return &savedJobRepository{db: db}
}

func (r *savedJobRepository) Create(ctx context.Context, saved *models.SavedJob) error {
	if saved.ID == "" {
		saved.ID = utils.GenerateID()
	}
	saved.CreatedAt = time.Now()

	query := `
		INSERT INTO saved_jobs (id, user_id, job_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, saved.ID, saved.UserID, saved.JobID, saved.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *savedJobRepository) Get(ctx context.Context, userID, jobID string) (*models.SavedJob, error) {
	var saved models.SavedJob
	query := `SELECT * FROM saved_jobs WHERE user_id = $1 AND job_id = $2`
	err := r.db.GetContext(ctx, &saved, query, userID, jobID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &saved, err
}

func (r *savedJobRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM saved_jobs WHERE id = $1`, id)
	return err
}

func (r *savedJobRepository) ListJobIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	query := `SELECT job_id FROM saved_jobs WHERE user_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}
