package models

import (
	"time"
)

// User roles
const (
	RoleClient   = "CLIENT"
	RoleProvider = "PROVIDER"
)

// Elite thresholds
const (
	EliteMinJobsCompleted = 10
	EliteMinRating        = 4.8
)

type User struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Name          string    `db:"name" json:"name"`
	Role          string    `db:"role" json:"role"`
	Bio           string    `db:"bio" json:"bio"`
	Skills        string    `db:"skills" json:"skills"`
	HourlyRate    *float64  `db:"hourly_rate" json:"hourlyRate"`
	ProfileImage  string    `db:"profile_image" json:"profileImage"`
	JobsCompleted int       `db:"jobs_completed" json:"jobsCompleted"`
	AverageRating float64   `db:"average_rating" json:"averageRating"`
	IsElite       bool      `db:"is_elite" json:"isElite"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type RegisterRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=6"`
	Name         string   `json:"name" validate:"required,min=2,max=100"`
	Role         string   `json:"role,omitempty" validate:"omitempty,oneof=CLIENT PROVIDER"`
	Bio          string   `json:"bio,omitempty"`
	Skills       string   `json:"skills,omitempty"`
	HourlyRate   *float64 `json:"hourlyRate,omitempty" validate:"omitempty,gte=0"`
	ProfileImage string   `json:"profileImage,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Bio          string   `json:"bio"`
	Skills       string   `json:"skills"`
	HourlyRate   *float64 `json:"hourlyRate" validate:"omitempty,gte=0"`
	ProfileImage string   `json:"profileImage"`
}

// UserStats is the derived reputation of a provider.
type UserStats struct {
	JobsCompleted int     `json:"jobsCompleted"`
	AverageRating float64 `json:"averageRating"`
	IsElite       bool    `json:"isElite"`
}

// ComputeStats derives the reputation fields from a completed-job count and
// the ratings received. With no ratings the average is 0.
func ComputeStats(jobsCompleted int, ratings []int) UserStats {
	var avg float64
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		avg = float64(sum) / float64(len(ratings))
	}
	return UserStats{
		JobsCompleted: jobsCompleted,
		AverageRating: avg,
		IsElite:       IsElite(jobsCompleted, avg),
	}
}

func IsElite(jobsCompleted int, averageRating float64) bool {
	return jobsCompleted >= EliteMinJobsCompleted && averageRating >= EliteMinRating
}

func IsValidRole(role string) bool {
	return role == RoleClient || role == RoleProvider
}
