package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeRecomputeStats = "reputation:recompute"
	QueueReputation    = "reputation"
)

// StatsRecomputer rebuilds a user's reputation from their jobs and reviews.
type StatsRecomputer interface {
	RecomputeStats(ctx context.Context, userID string) error
}

type RecomputeStatsPayload struct {
	UserID string `json:"userId"`
}

func NewRecomputeStatsTask(userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(RecomputeStatsPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRecomputeStats, payload, asynq.Queue(QueueReputation), asynq.MaxRetry(3)), nil
}

// InlineDispatcher recomputes in the caller's goroutine. Failures are
// logged and never reach the caller.
type InlineDispatcher struct {
	recomputer StatsRecomputer
	logger     *zap.Logger
}

func NewInlineDispatcher(recomputer StatsRecomputer, logger *zap.Logger) *InlineDispatcher {
	return &InlineDispatcher{recomputer: recomputer, logger: logger}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, userID string) {
	if err := d.recomputer.RecomputeStats(ctx, userID); err != nil {
		d.logger.Error("failed to recompute user stats", zap.String("user_id", userID), zap.Error(err))
	}
}

// QueueDispatcher hands the recompute to the asynq worker.
type QueueDispatcher struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewQueueDispatcher(client *asynq.Client, logger *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{client: client, logger: logger}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, userID string) {
	task, err := NewRecomputeStatsTask(userID)
	if err != nil {
		d.logger.Error("failed to build recompute task", zap.String("user_id", userID), zap.Error(err))
		return
	}
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		d.logger.Error("failed to enqueue recompute task", zap.String("user_id", userID), zap.Error(err))
		return
	}
	d.logger.Debug("recompute task enqueued", zap.String("user_id", userID), zap.String("task_id", info.ID))
}

// HandleRecomputeStats returns the asynq handler for recompute tasks.
func HandleRecomputeStats(recomputer StatsRecomputer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p RecomputeStatsPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.UserID == "" {
			return fmt.Errorf("missing user id: %w", asynq.SkipRetry)
		}
		return recomputer.RecomputeStats(ctx, p.UserID)
	}
}
