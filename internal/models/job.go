package models

import (
	"time"

	"github.com/lib/pq"
)

// Job status constants
const (
	JobStatusOpen       = "OPEN"
	JobStatusInProgress = "IN_PROGRESS"
	JobStatusCompleted  = "COMPLETED"
	JobStatusPaid       = "PAID"
)

// Valid job state transitions. Forward only, one step at a time.
var ValidJobTransitions = map[string][]string{
	JobStatusOpen:       {JobStatusInProgress},
	JobStatusInProgress: {JobStatusCompleted},
	JobStatusCompleted:  {JobStatusPaid},
	JobStatusPaid:       {},
}

type Job struct {
	ID            string         `db:"id" json:"id"`
	Title         string         `db:"title" json:"title"`
	Description   string         `db:"description" json:"description"`
	Price         float64        `db:"price" json:"price"`
	ClientID      string         `db:"client_id" json:"clientId"`
	ProviderID    *string        `db:"provider_id" json:"providerId"`
	Status        string         `db:"status" json:"status"`
	Latitude      float64        `db:"latitude" json:"latitude"`
	Longitude     float64        `db:"longitude" json:"longitude"`
	ZipCode       string         `db:"zip_code" json:"zipCode"`
	Category      string         `db:"category" json:"category"`
	Tags          string         `db:"tags" json:"tags"`
	IsUrgent      bool           `db:"is_urgent" json:"isUrgent"`
	Photos        pq.StringArray `db:"photos" json:"photos"`
	ScheduledDate *time.Time     `db:"scheduled_date" json:"scheduledDate"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

type CreateJobRequest struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description"`
	Price         float64    `json:"price" validate:"gt=0"`
	ClientID      string     `json:"clientId" validate:"required"`
	Latitude      *float64   `json:"latitude" validate:"required,latitude"`
	Longitude     *float64   `json:"longitude" validate:"required,longitude"`
	ZipCode       string     `json:"zipCode"`
	Category      string     `json:"category"`
	Tags          string     `json:"tags"`
	IsUrgent      bool       `json:"isUrgent"`
	Photos        []string   `json:"photos" validate:"max=5"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

type ProviderRequest struct {
	ProviderID string `json:"providerId" validate:"required"`
}

type CompleteJobRequest struct {
	ProviderID string `json:"providerId"`
}

type UpdateJobStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS COMPLETED PAID"`
}

// JobDetails is a job together with the records the UI shows next to it.
type JobDetails struct {
	*Job
	Client       *User          `json:"client,omitempty"`
	Provider     *User          `json:"provider,omitempty"`
	Applications []*Application `json:"applications,omitempty"`
	Distance     *float64       `json:"distanceKm,omitempty"`
}

// CompletionResult is returned when a provider completes a job.
type CompletionResult struct {
	Job         *Job         `json:"job"`
	Transaction *Transaction `json:"transaction"`
}

// CanTransitionTo checks if a job can transition to a new status
func (j *Job) CanTransitionTo(newStatus string) bool {
	validNextStates, exists := ValidJobTransitions[j.Status]
	if !exists {
		return false
	}

	for _, state := range validNextStates {
		if state == newStatus {
			return true
		}
	}
	return false
}

// HasProvider reports whether a provider has been assigned.
func (j *Job) HasProvider() bool {
	return j.ProviderID != nil && *j.ProviderID != ""
}

func IsValidJobStatus(status string) bool {
	_, ok := ValidJobTransitions[status]
	return ok
}
