package tasks

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker runs the asynq server that drains the background queues.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewWorker(opt asynq.RedisClientOpt, concurrency int, recomputer StatsRecomputer, logger *zap.Logger) *Worker {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRecomputeStats, HandleRecomputeStats(recomputer))

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueReputation: 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("background task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	return &Worker{server: server, mux: mux, logger: logger}
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.logger.Info("background worker started")

	<-ctx.Done()
	w.server.Shutdown()
	w.logger.Info("background worker stopped")
	return nil
}
