/*
Package scheduler submits fork/join tasks into a pool at scheduled times.

It supports one-time delayed execution, fixed-interval repetition, and
cron expressions (six-field form with seconds, via robfig/cron). The
scheduler only decides when to submit; execution, stealing and joining
are the pool's business.

Basic usage:

	pool := forkjoin.New(0)
	s := scheduler.NewWithConfig(scheduler.Config{Pool: pool})
	defer func() { <-s.Stop() }()

	s.Start()

	task := forkjoin.TaskFunc(func(fc *forkjoin.Context) error {
		// fork/join work as usual
		return nil
	})

	s.ScheduleAfter("warmup", task, time.Second)
	s.ScheduleRepeating("refresh", task, 30*time.Second)
	s.ScheduleCron("nightly", "0 0 3 * * *", task)

If no pool is supplied the scheduler creates one sized to GOMAXPROCS and
shuts it down when stopped.
*/
package scheduler
