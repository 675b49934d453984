package models

import (
	"time"
)

type Review struct {
	ID         string    `db:"id" json:"id"`
	JobID      string    `db:"job_id" json:"jobId"`
	ReviewerID string    `db:"reviewer_id" json:"reviewerId"`
	RevieweeID string    `db:"reviewee_id" json:"revieweeId"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

type CreateReviewRequest struct {
	JobID      string `json:"jobId" validate:"required"`
	ReviewerID string `json:"reviewerId" validate:"required"`
	RevieweeID string `json:"revieweeId" validate:"required"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

// ReviewerSummary is the part of the reviewer shown with each review.
type ReviewerSummary struct {
	Name         string `db:"name" json:"name"`
	ProfileImage string `db:"profile_image" json:"profileImage"`
}

type ReviewWithReviewer struct {
	Review
	Reviewer ReviewerSummary `db:"reviewer" json:"reviewer"`
}
