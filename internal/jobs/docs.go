// Package jobs provides scheduled background tasks for the delivery system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// TrackingSweepJob runs every minute and removes tracking records whose
// retention window has passed but whose cleanup timer never fired.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	sweep := jobs.NewTrackingSweepJob(hub, "", jobMetrics, log)
//	jobManager := jobs.NewJobManager(log, sweep)
//
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use the six-field cron syntax with seconds, e.g. "0 * * * * *".
//
// # Error Handling
//
// A job that fails to start stops every job started before it.
package jobs
