// Package jobs provides scheduled background tasks for the delivery system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. OutboxRelayJob - Runs every two seconds to publish committed domain events to Kafka
// 2. RouteCompletionSweepJob - Runs every thirty seconds to complete InProgress routes whose orders are all finished
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewOutboxRelayJob(relay, 10*time.Second, logger),
//		jobs.NewRouteCompletionSweepJob(uowFactory, completeRouteHandler, time.Minute, logger),
//	)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use six-field cron expressions with seconds. A run still in
// progress when the next tick fires makes that tick a no-op.
//
// # Error Handling
//
// - The relay stops draining on the first failure; unmarked messages are sent again on the next run
// - The sweep logs per-route failures and carries on with the next route
// - Failed job starts will stop any already running jobs
package jobs
