// Package jobs provides scheduled background tasks for the tracking service.
//
// Jobs are cron-based, using github.com/robfig/cron/v3 with the seconds field
// enabled.
//
// # Available Jobs
//
// ObserverSweepJob disconnects websocket observers that stopped answering pings.
// Each run removes every observer whose last heartbeat is older than the idle
// timeout from the subscription registry and closes it.
//
// # Usage
//
//	sweep := jobs.NewObserverSweepJob(registry, time.Minute, "*/30 * * * * *", log)
//	jobManager := jobs.NewJobManager(sweep)
//
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
package jobs
