package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// OutboxRelaySchedule runs the relay every two seconds.
const OutboxRelaySchedule = "*/2 * * * * *"

// Relayer publishes one batch of unpublished outbox messages.
type Relayer interface {
	RelayOnce(ctx context.Context) (int, error)
}

// OutboxRelayJob periodically moves committed domain events to the broker.
// A run that finds a full batch keeps relaying until the outbox is drained.
type OutboxRelayJob struct {
	relay   Relayer
	timeout time.Duration
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
}

func NewOutboxRelayJob(relay Relayer, timeout time.Duration, logger *slog.Logger) *OutboxRelayJob {
	return &OutboxRelayJob{
		relay:   relay,
		timeout: timeout,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.With("component", "outbox_relay_job"),
	}
}

func (j *OutboxRelayJob) Start() error {
	_, err := j.cron.AddFunc(OutboxRelaySchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		j.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Outbox relay job started", "schedule", OutboxRelaySchedule)
	return nil
}

// RunOnce relays until a batch comes back empty or fails, and returns the
// number of published messages.
func (j *OutboxRelayJob) RunOnce(ctx context.Context) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	total := 0
	for ctx.Err() == nil {
		n, err := j.relay.RelayOnce(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "Outbox relay failed", "error", err)
			break
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total
}

// Stop waits for a running relay to finish.
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Outbox relay job stopped")
}
