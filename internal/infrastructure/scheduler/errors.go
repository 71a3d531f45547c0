package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrNoExecutor is returned when the scheduler is built without an executor
	ErrNoExecutor = errors.New("scheduler requires an executor")

	// ErrInvalidResource is returned for an unknown sync resource
	ErrInvalidResource = errors.New("invalid sync resource")

	// ErrJobTimeout is recorded when a job outlives its timeout
	ErrJobTimeout = errors.New("sync job timed out")
)
