package models

import (
	"time"
)

// Notification types
const (
	NotificationApplication  = "APPLICATION"
	NotificationJobAccepted  = "JOB_ACCEPTED"
	NotificationJobStatus    = "JOB_STATUS"
	NotificationJobCompleted = "JOB_COMPLETED"
	NotificationReview       = "REVIEW"
	NotificationPayment      = "PAYMENT"
)

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	RelatedID string    `db:"related_id" json:"relatedId"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NotificationEvent is the realtime payload pushed to a user's room.
type NotificationEvent struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	RelatedID string `json:"relatedId"`
}
