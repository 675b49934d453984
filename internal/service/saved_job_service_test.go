package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestToggleSavedJob(t *testing.T) {
	repo := &fakeSavedJobRepo{clock: newClock()}
	svc := NewSavedJobService(repo, zap.NewNop())
	ctx := context.Background()

	saved, err := svc.Toggle(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = svc.Toggle(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Empty(t, repo.saved)

	saved, err = svc.Toggle(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestListSavedJobIDs(t *testing.T) {
	repo := &fakeSavedJobRepo{clock: newClock()}
	svc := NewSavedJobService(repo, zap.NewNop())
	ctx := context.Background()

	for _, jobID := range []string{"job-1", "job-2", "job-3"} {
		_, err := svc.Toggle(ctx, "user-1", jobID)
		require.NoError(t, err)
	}
	_, err := svc.Toggle(ctx, "user-2", "job-1")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, "user-1", "job-2")
	require.NoError(t, err)

	ids, err := svc.ListJobIDs(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"job-3", "job-1"}, ids)

	none, err := svc.ListJobIDs(ctx, "user-3")
	require.NoError(t, err)
	assert.Equal(t, []string{}, none)
}
