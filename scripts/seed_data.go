//go:build ignore

package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/aditya/go-gigs/internal/cache"
	"github.com/aditya/go-gigs/internal/config"
	"github.com/aditya/go-gigs/internal/database"
	"github.com/aditya/go-gigs/internal/logger"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/realtime"
	"github.com/aditya/go-gigs/internal/repository"
	"github.com/aditya/go-gigs/internal/service"
	"github.com/aditya/go-gigs/internal/tasks"
	"go.uber.org/zap"
)

// San Francisco
const (
	baseLat = 37.7749
	baseLng = -122.4194
)

var (
	firstNames = []string{"Ana", "Ben", "Chloe", "Dev", "Elena", "Felix", "Grace", "Hugo", "Iris", "Jamal",
		"Kira", "Liam", "Maya", "Noah", "Olga", "Priya", "Quinn", "Rosa", "Sam", "Tariq"}
	lastNames = []string{"Garcia", "Nguyen", "Smith", "Okafor", "Kowalski", "Rossi", "Tanaka", "Haddad", "Silva", "Berg"}

	gigs = []struct {
		title    string
		category string
		price    float64
	}{
		{"Assemble IKEA wardrobe", "Furniture", 80},
		{"Fix leaking kitchen tap", "Plumbing", 65},
		{"Walk two dogs for a week", "Pets", 120},
		{"Mount 55 inch TV", "Handyman", 70},
		{"Deep clean 2BR apartment", "Cleaning", 150},
		{"Help move boxes to storage", "Moving", 95},
		{"Paint garden fence", "Painting", 200},
		{"Set up home wifi mesh", "Tech", 60},
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to create schema", zap.Error(err))
	}

	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	userRepo := repository.NewUserRepository(db.DB)
	jobRepo := repository.NewJobRepository(db.DB)
	reviewRepo := repository.NewReviewRepository(db.DB)

	// Seeding goes through the services so passwords are hashed, jobs land
	// in the geo index and reputations are computed.
	nop := zap.NewNop()
	notifier := service.NewNotificationService(repository.NewNotificationRepository(db.DB), realtime.NewHub(nop), nop)
	stats := tasks.NewInlineDispatcher(service.NewReputationService(jobRepo, reviewRepo, userRepo, nop), log)
	users := service.NewUserService(userRepo, nop)
	jobs := service.NewJobService(jobRepo, repository.NewApplicationRepository(db.DB), userRepo,
		repository.NewTransactionRepository(db.DB), service.NewFeeService(cfg.PlatformFeeRate),
		notifier, stats, cache.NewJobLocationCache(redis.Client),
		service.JobServiceConfig{TransitionPolicy: config.TransitionPolicyStrict, NearbyRadiusKM: cfg.NearbyRadiusKM}, nop)
	reviews := service.NewReviewService(reviewRepo, jobRepo, userRepo, stats, notifier, nop)

	clientIDs := createUsers(ctx, log, users, models.RoleClient, 20)
	providerIDs := createUsers(ctx, log, users, models.RoleProvider, 30)
	if len(clientIDs) == 0 || len(providerIDs) == 0 {
		log.Fatal("no users created, is the database empty?")
	}

	var open, completed int
	for i := 0; i < 60; i++ {
		gig := gigs[rand.Intn(len(gigs))]
		lat := baseLat + (rand.Float64()-0.5)*0.2 // about +/- 11km
		lng := baseLng + (rand.Float64()-0.5)*0.2

		job, err := jobs.PostJob(ctx, &models.CreateJobRequest{
			Title:     gig.title,
			Price:     gig.price,
			ClientID:  clientIDs[rand.Intn(len(clientIDs))],
			Latitude:  &lat,
			Longitude: &lng,
			Category:  gig.category,
			IsUrgent:  rand.Float64() < 0.2,
		})
		if err != nil {
			log.Warn("failed to post job", zap.Error(err))
			continue
		}

		// A third of the jobs get worked and reviewed.
		if i%3 != 0 {
			open++
			continue
		}
		providerID := providerIDs[rand.Intn(len(providerIDs))]
		if _, err := jobs.AcceptProvider(ctx, job.ID, providerID); err != nil {
			log.Warn("failed to accept provider", zap.Error(err))
			continue
		}
		if _, err := jobs.Complete(ctx, job.ID, providerID); err != nil {
			log.Warn("failed to complete job", zap.Error(err))
			continue
		}
		if _, err := reviews.SubmitReview(ctx, &models.CreateReviewRequest{
			JobID:      job.ID,
			ReviewerID: job.ClientID,
			RevieweeID: providerID,
			Rating:     3 + rand.Intn(3),
			Comment:    "Great work, would hire again",
		}); err != nil {
			log.Warn("failed to submit review", zap.Error(err))
		}
		completed++
	}

	log.Info("seed complete",
		zap.Int("clients", len(clientIDs)),
		zap.Int("providers", len(providerIDs)),
		zap.Int("open_jobs", open),
		zap.Int("completed_jobs", completed),
		zap.String("sample_client", clientIDs[0]),
		zap.String("sample_provider", providerIDs[0]))
}

func createUsers(ctx context.Context, log *zap.Logger, users service.UserService, role string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[rand.Intn(len(firstNames))]
		last := lastNames[rand.Intn(len(lastNames))]
		req := &models.RegisterRequest{
			Email:    fmt.Sprintf("%s.%s.%d@example.com", first, last, rand.Intn(1000000)),
			Password: "password123",
			Name:     first + " " + last,
			Role:     role,
		}
		if role == models.RoleProvider {
			rate := float64(25 + rand.Intn(60))
			req.HourlyRate = &rate
			req.Skills = gigs[rand.Intn(len(gigs))].category
		}

		user, err := users.Register(ctx, req)
		if err != nil {
			log.Warn("failed to create user", zap.Error(err))
			continue
		}
		ids = append(ids, user.ID)
	}
	return ids
}
