package models

import (
	"time"
)

// Application status constants
const (
	ApplicationStatusPending  = "PENDING"
	ApplicationStatusAccepted = "ACCEPTED"
)

type Application struct {
	ID         string    `db:"id" json:"id"`
	JobID      string    `db:"job_id" json:"jobId"`
	ProviderID string    `db:"provider_id" json:"providerId"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
