package service

import (
	"context"
	"fmt"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/repository"
	"go.uber.org/zap"
)

type ReviewService interface {
	SubmitReview(ctx context.Context, req *models.CreateReviewRequest) (*models.Review, error)
	ListForUser(ctx context.Context, userID string) ([]*models.ReviewWithReviewer, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	jobRepo    repository.JobRepository
	userRepo   repository.UserRepository
	stats      StatsDispatcher
	notifier   NotificationService
	logger     *zap.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	jobRepo repository.JobRepository,
	userRepo repository.UserRepository,
	stats StatsDispatcher,
	notifier NotificationService,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		jobRepo:    jobRepo,
		userRepo:   userRepo,
		stats:      stats,
		notifier:   notifier,
		logger:     logger,
	}
}

// SubmitReview records the review and refreshes the reviewee's reputation.
// Reviewing yourself is allowed.
func (s *reviewService) SubmitReview(ctx context.Context, req *models.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.InvalidRating()
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, apperrors.Persistence("fetch job", err)
	}
	if job == nil {
		return nil, apperrors.NotFound("job")
	}

	reviewee, err := s.userRepo.GetByID(ctx, req.RevieweeID)
	if err != nil {
		return nil, apperrors.Persistence("fetch user", err)
	}
	if reviewee == nil {
		return nil, apperrors.NotFound("user")
	}

	review := &models.Review{
		JobID:      req.JobID,
		ReviewerID: req.ReviewerID,
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, apperrors.Persistence("create review", err)
	}

	s.stats.Dispatch(ctx, review.RevieweeID)
	s.notifier.Notify(ctx, review.RevieweeID,
		fmt.Sprintf("You received a %d-star review for \"%s\"", review.Rating, job.Title),
		models.NotificationReview, review.ID)

	return review, nil
}

func (s *reviewService) ListForUser(ctx context.Context, userID string) ([]*models.ReviewWithReviewer, error) {
	reviews, err := s.reviewRepo.ListByReviewee(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("fetch reviews", err)
	}
	if reviews == nil {
		reviews = []*models.ReviewWithReviewer{}
	}
	return reviews, nil
}
