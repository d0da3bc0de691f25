package jobs

import (
	"time"

	"deliveryhub/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const trackingSweepJobName = "tracking_sweep"

// DefaultTrackingSweepSchedule runs the sweep every minute.
const DefaultTrackingSweepSchedule = "0 * * * * *"

// Sweeper removes tracking records whose retention window has passed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// TrackingSweepJob backs up the per-record cleanup timers of the tracking hub. A
// record whose timer was lost is removed here once its retention window is over.
type TrackingSweepJob struct {
	sweeper  Sweeper
	schedule string
	now      func() time.Time
	cron     *cron.Cron
	metrics  *metrics.CronJobMetrics
	logger   zerolog.Logger
}

// NewTrackingSweepJob creates the job. An empty schedule uses
// DefaultTrackingSweepSchedule.
func NewTrackingSweepJob(
	sweeper Sweeper,
	schedule string,
	jobMetrics *metrics.CronJobMetrics,
	logger zerolog.Logger,
) *TrackingSweepJob {
	if schedule == "" {
		schedule = DefaultTrackingSweepSchedule
	}
	return &TrackingSweepJob{
		sweeper:  sweeper,
		schedule: schedule,
		now:      func() time.Time { return time.Now().UTC() },
		cron:     cron.New(cron.WithSeconds()),
		metrics:  jobMetrics,
		logger:   logger.With().Str("component", "tracking_sweep_job").Logger(),
	}
}

// Start schedules the sweep.
func (j *TrackingSweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("tracking sweep job started")
	return nil
}

// Run performs one sweep.
func (j *TrackingSweepJob) Run() {
	start := time.Now()
	removed := j.sweeper.Sweep(j.now())
	j.metrics.ObserveDuration(trackingSweepJobName, time.Since(start))
	j.metrics.IncSuccess(trackingSweepJobName)

	if removed > 0 {
		j.logger.Info().Int("removed", removed).Msg("expired tracking records removed")
	}
}

// Stop stops scheduling and waits for a running sweep to finish.
func (j *TrackingSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("tracking sweep job stopped")
}

// Name identifies the job in logs and metrics.
func (j *TrackingSweepJob) Name() string {
	return trackingSweepJobName
}
