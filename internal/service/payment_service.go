package service

import (
	"context"
	"fmt"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/payments"
	"github.com/aditya/go-gigs/internal/repository"
	"go.uber.org/zap"
)

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, req *models.CreatePaymentIntentRequest) (*models.PaymentIntentResponse, error)
}

type paymentService struct {
	jobRepo  repository.JobRepository
	provider payments.Provider
	fees     FeeService
	notifier NotificationService
	currency string
	logger   *zap.Logger
}

func NewPaymentService(
	jobRepo repository.JobRepository,
	provider payments.Provider,
	fees FeeService,
	notifier NotificationService,
	currency string,
	logger *zap.Logger,
) PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &paymentService{
		jobRepo:  jobRepo,
		provider: provider,
		fees:     fees,
		notifier: notifier,
		currency: currency,
		logger:   logger,
	}
}

func (s *paymentService) CreatePaymentIntent(ctx context.Context, req *models.CreatePaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	if req.Amount <= 0 {
		return nil, apperrors.Validation("amount must be greater than zero")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, apperrors.Persistence("fetch job", err)
	}
	if job == nil {
		return nil, apperrors.NotFound("job")
	}

	cents := s.fees.ToCents(req.Amount)
	secret, err := s.provider.CreatePaymentIntent(ctx, cents, s.currency, map[string]string{
		"jobId": job.ID,
	})
	if err != nil {
		s.logger.Error("payment intent failed", zap.String("job_id", job.ID), zap.Error(err))
		return nil, apperrors.ExternalService("payment provider", err)
	}

	if job.HasProvider() {
		s.notifier.Notify(ctx, *job.ProviderID,
			fmt.Sprintf("Payment of %.2f started for \"%s\"", req.Amount, job.Title),
			models.NotificationPayment, job.ID)
	}

	return &models.PaymentIntentResponse{ClientSecret: secret}, nil
}
