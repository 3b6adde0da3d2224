package jobs

import (
	"time"

	"shiptrack/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweep every 30 seconds.
const DefaultSweepSchedule = "*/30 * * * * *"

// Sweeper removes observers that have not been seen since cutoff.
type Sweeper interface {
	Sweep(cutoff time.Time) int
}

// ObserverSweepJob periodically disconnects observers whose last heartbeat is
// older than the idle timeout.
type ObserverSweepJob struct {
	sweeper     Sweeper
	idleTimeout time.Duration
	schedule    string
	now         func() time.Time
	cron        *cron.Cron
	logger      *logger.Logger
}

// NewObserverSweepJob creates the job. An empty schedule means DefaultSweepSchedule.
// Schedules use the six-field cron format with seconds, or descriptors such as "@every 1m".
func NewObserverSweepJob(sweeper Sweeper, idleTimeout time.Duration, schedule string, log *logger.Logger) *ObserverSweepJob {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &ObserverSweepJob{
		sweeper:     sweeper,
		idleTimeout: idleTimeout,
		schedule:    schedule,
		now:         time.Now,
		cron:        cron.New(cron.WithSeconds()),
		logger:      log.Named("observer_sweep_job"),
	}
}

// Start schedules the sweep. It fails on a malformed schedule.
func (j *ObserverSweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("observer sweep job started", "schedule", j.schedule, "idle_timeout", j.idleTimeout)
	return nil
}

// Stop waits for a running sweep to finish.
func (j *ObserverSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("observer sweep job stopped")
}

func (j *ObserverSweepJob) run() {
	if removed := j.sweeper.Sweep(j.now().Add(-j.idleTimeout)); removed > 0 {
		j.logger.Info("idle observers removed", "count", removed)
	}
}
