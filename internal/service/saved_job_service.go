package service

import (
	"context"
	"errors"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/repository"
	"go.uber.org/zap"
)

type SavedJobService interface {
	// Toggle saves the job if it is not saved and unsaves it otherwise. It
	// reports whether the job is saved afterwards.
	Toggle(ctx context.Context, userID, jobID string) (bool, error)
	ListJobIDs(ctx context.Context, userID string) ([]string, error)
}

type savedJobService struct {
	savedJobRepo repository.SavedJobRepository
	logger       *zap.Logger
}

func NewSavedJobService(savedJobRepo repository.SavedJobRepository, logger *zap.Logger) SavedJobService {
	return &savedJobService{savedJobRepo: savedJobRepo, logger: logger}
}

func (s *savedJobService) Toggle(ctx context.Context, userID, jobID string) (bool, error) {
	existing, err := s.savedJobRepo.Get(ctx, userID, jobID)
	if err != nil {
		return false, apperrors.Persistence("fetch saved job", err)
	}

	if existing != nil {
		if err := s.savedJobRepo.Delete(ctx, existing.ID); err != nil {
			return false, apperrors.Persistence("unsave job", err)
		}
		return false, nil
	}

	err = s.savedJobRepo.Create(ctx, &models.SavedJob{UserID: userID, JobID: jobID})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return false, apperrors.Persistence("save job", err)
	}
	return true, nil
}

func (s *savedJobService) ListJobIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.savedJobRepo.ListJobIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("fetch saved jobs", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
