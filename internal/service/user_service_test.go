package service

import (
	"context"
	"testing"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo(newClock())
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()

	user, err := svc.Register(ctx, &models.RegisterRequest{
		Email:    " Dana@Example.com ",
		Password: "hunter22",
		Name:     "Dana",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, models.RoleClient, user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	_, err = svc.Register(ctx, &models.RegisterRequest{Email: "dana@example.com", Password: "x12345", Name: "Dupe"})
	assert.Equal(t, apperrors.KindConflict, apperrors.Kind(err))

	logged, err := svc.Login(ctx, &models.LoginRequest{Email: "DANA@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "dana@example.com", Password: "wrong"})
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.Kind(err))

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.Kind(err))
}

func TestUpdateProfile(t *testing.T) {
	users := newFakeUserRepo(newClock())
	users.add(&models.User{ID: "provider-1", Name: "Pat", Role: models.RoleProvider, JobsCompleted: 4})
	svc := NewUserService(users, zap.NewNop())
	rate := 45.0

	user, err := svc.UpdateProfile(context.Background(), "provider-1", &models.UpdateProfileRequest{
		Bio:        "Plumber",
		Skills:     "pipes,drains",
		HourlyRate: &rate,
	})
	require.NoError(t, err)
	assert.Equal(t, "Plumber", user.Bio)
	assert.Equal(t, 45.0, *users.users["provider-1"].HourlyRate)
	assert.Equal(t, 4, user.JobsCompleted)

	_, err = svc.UpdateProfile(context.Background(), "ghost", &models.UpdateProfileRequest{})
	assert.True(t, apperrors.IsNotFound(err))
}
