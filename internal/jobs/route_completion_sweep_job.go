package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// RouteCompletionSweepSchedule runs the sweep every thirty seconds.
const RouteCompletionSweepSchedule = "*/30 * * * * *"

// RouteCompletionSweepJob re-runs the completion rule for every InProgress
// route. It converges routes whose completing reaction lost an optimistic
// concurrency race with another order update.
type RouteCompletionSweepJob struct {
	uowFactory commands.UoWFactory
	handler    commands.CompleteRouteCommandHandler
	timeout    time.Duration
	cron       *cron.Cron
	logger     *slog.Logger
}

func NewRouteCompletionSweepJob(
	uowFactory commands.UoWFactory,
	handler commands.CompleteRouteCommandHandler,
	timeout time.Duration,
	logger *slog.Logger,
) *RouteCompletionSweepJob {
	return &RouteCompletionSweepJob{
		uowFactory: uowFactory,
		handler:    handler,
		timeout:    timeout,
		cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:     logger.With("component", "route_completion_sweep_job"),
	}
}

func (j *RouteCompletionSweepJob) Start() error {
	_, err := j.cron.AddFunc(RouteCompletionSweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Route completion sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Route completion sweep job started", "schedule", RouteCompletionSweepSchedule)
	return nil
}

// RunOnce returns how many routes the sweep completed. A route that fails to
// complete is logged and left for the next run.
func (j *RouteCompletionSweepJob) RunOnce(ctx context.Context) (int, error) {
	routeIDs, err := j.inProgressRoutes(ctx)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, routeID := range routeIDs {
		cmd, err := commands.NewCompleteRouteCommand(routeID)
		if err != nil {
			return completed, err
		}

		done, err := j.handler.Handle(ctx, cmd)
		switch {
		case err == nil && done:
			completed++
			j.logger.InfoContext(ctx, "Route completed by sweep", "route_id", routeID.String())
		case errors.Is(err, errs.ErrConflict):
			j.logger.DebugContext(ctx, "Route changed during sweep", "route_id", routeID.String())
		case err != nil:
			j.logger.WarnContext(ctx, "Route completion failed", "route_id", routeID.String(), "error", err)
		}
	}
	return completed, nil
}

func (j *RouteCompletionSweepJob) inProgressRoutes(ctx context.Context) ([]kernel.UUID, error) {
	uow := j.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routes, err := uow.RouteRepository().GetAllInProgress(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, len(routes))
	for i, r := range routes {
		ids[i] = r.ID()
	}
	return ids, nil
}

func (j *RouteCompletionSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Route completion sweep job stopped")
}
