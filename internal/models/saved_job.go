package models

import (
	"time"
)

type SavedJob struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	JobID     string    `db:"job_id" json:"jobId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type ToggleSavedJobRequest struct {
	UserID string `json:"userId" validate:"required"`
	JobID  string `json:"jobId" validate:"required"`
}
