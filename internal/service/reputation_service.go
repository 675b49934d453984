package service

import (
	"context"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/repository"
	"go.uber.org/zap"
)

// StatsDispatcher schedules a reputation recompute. It never fails the
// caller; implementations log their own errors.
type StatsDispatcher interface {
	Dispatch(ctx context.Context, userID string)
}

type ReputationService interface {
	RecomputeStats(ctx context.Context, userID string) error
}

type reputationService struct {
	jobRepo    repository.JobRepository
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	logger     *zap.Logger
}

func NewReputationService(
	jobRepo repository.JobRepository,
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) ReputationService {
	return &reputationService{
		jobRepo:    jobRepo,
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// RecomputeStats rebuilds jobsCompleted, averageRating and isElite for the
// user from scratch. Concurrent calls for one user are last-write-wins.
func (s *reputationService) RecomputeStats(ctx context.Context, userID string) error {
	jobsCompleted, err := s.jobRepo.CountCompletedByProvider(ctx, userID)
	if err != nil {
		return apperrors.Persistence("count completed jobs", err)
	}

	ratings, err := s.reviewRepo.ListRatingsByReviewee(ctx, userID)
	if err != nil {
		return apperrors.Persistence("fetch ratings", err)
	}

	stats := models.ComputeStats(jobsCompleted, ratings)
	if err := s.userRepo.UpdateStats(ctx, userID, stats); err != nil {
		return apperrors.Persistence("update user stats", err)
	}

	s.logger.Debug("user stats recomputed",
		zap.String("user_id", userID),
		zap.Int("jobs_completed", stats.JobsCompleted),
		zap.Float64("average_rating", stats.AverageRating),
		zap.Bool("is_elite", stats.IsElite))
	return nil
}
