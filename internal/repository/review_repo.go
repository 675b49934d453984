package repository

import (
	"context"
	"time"

	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/jmoiron/sqlx"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListRatingsByReviewee(ctx context.Context, revieweeID string) ([]int, error)
	ListByReviewee(ctx context.Context, revieweeID string) ([]*models.ReviewWithReviewer, error)
}

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = utils.GenerateID()
	}
	review.CreatedAt = time.Now()

	query := `
		INSERT INTO reviews (id, job_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		review.ID, review.JobID, review.ReviewerID, review.RevieweeID,
		review.Rating, review.Comment, review.CreatedAt)
	return err
}

func (r *reviewRepository) ListRatingsByReviewee(ctx context.Context, revieweeID string) ([]int, error) {
	var ratings []int
	query := `SELECT rating FROM reviews WHERE reviewee_id = $1`
	err := r.db.SelectContext(ctx, &ratings, query, revieweeID)
	return ratings, err
}

func (r *reviewRepository) ListByReviewee(ctx context.Context, revieweeID string) ([]*models.ReviewWithReviewer, error) {
	var reviews []*models.ReviewWithReviewer
	query := `
		SELECT r.*, u.name AS "reviewer.name", u.profile_image AS "reviewer.profile_image"
		FROM reviews r
		JOIN users u ON u.id = r.reviewer_id
		WHERE r.reviewee_id = $1
		ORDER BY r.created_at DESC
	`
	err := r.db.SelectContext(ctx, &reviews, query, revieweeID)
	return reviews, err
}
