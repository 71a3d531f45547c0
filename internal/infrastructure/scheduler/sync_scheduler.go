package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/infrastructure/config"
)

// ---------------------------------------------------------------------------
// Sync Job Types
// ---------------------------------------------------------------------------

// JobStatus represents the status of a sync job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSuccess   JobStatus = "success"
	JobStatusPartial   JobStatus = "partial"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// maxRetryDelay caps the exponential backoff between retries
const maxRetryDelay = 30 * time.Minute

// SyncJob is one queued pull from the store
type SyncJob struct {
	ID          uuid.UUID
	Resource    commerce.Resource
	Trigger     commerce.Trigger
	Status      JobStatus
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
	Summary     *commerce.SyncSummary
}

// NewSyncJob creates a pending sync job
func NewSyncJob(resource commerce.Resource, trigger commerce.Trigger, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:         uuid.New(),
		Resource:   resource,
		Trigger:    trigger,
		Status:     JobStatusPending,
		CreatedAt:  time.Now(),
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *SyncJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the summary and derives the job status from it
func (j *SyncJob) Complete(summary *commerce.SyncSummary) {
	now := time.Now()
	j.CompletedAt = &now
	j.Summary = summary
	if summary == nil {
		j.Status = JobStatusSuccess
		return
	}
	switch summary.Status {
	case commerce.RunStatusFailed:
		j.Status = JobStatusFailed
		if len(summary.ErrorMessages) > 0 {
			j.Error = summary.ErrorMessages[len(summary.ErrorMessages)-1]
		}
	case commerce.RunStatusPartial:
		j.Status = JobStatusPartial
	default:
		j.Status = JobStatusSuccess
	}
}

// Fail marks the job as failed
func (j *SyncJob) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// Cancel marks the job as cancelled
func (j *SyncJob) Cancel() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
}

// ShouldRetry returns true if the job failed and has retries left
func (j *SyncJob) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry bumps the retry count and returns the backoff delay.
// The delay is baseDelay * 2^(retryCount-1), capped at 30 minutes.
func (j *SyncJob) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = JobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > maxRetryDelay || delay <= 0 {
		delay = maxRetryDelay
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	return delay
}

// ---------------------------------------------------------------------------
// Executor
// ---------------------------------------------------------------------------

// SyncExecutor runs one sync for a job
type SyncExecutor interface {
	Execute(ctx context.Context, job *SyncJob) (*commerce.SyncSummary, error)
}

// ExecutorFunc adapts a function to SyncExecutor
type ExecutorFunc func(ctx context.Context, job *SyncJob) (*commerce.SyncSummary, error)

// Execute calls f
func (f ExecutorFunc) Execute(ctx context.Context, job *SyncJob) (*commerce.SyncSummary, error) {
	return f(ctx, job)
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// Config holds configuration for the sync scheduler
type Config struct {
	// Enabled turns on the periodic ticker
	Enabled bool
	// SyncInterval is how often the ticker enqueues a sync; zero disables the ticker
	SyncInterval time.Duration
	// Resources are enqueued on every tick
	Resources []commerce.Resource
	// MaxConcurrentJobs is the worker pool size
	MaxConcurrentJobs int
	// QueueSize bounds the job channel
	QueueSize int
	// JobTimeout is the maximum time a job can run
	JobTimeout time.Duration
	// RetryAttempts is the number of retries for failed jobs
	RetryAttempts int
	// RetryDelay is the base delay between retries
	RetryDelay time.Duration
	// MaxHistory bounds the in-memory job history
	MaxHistory int
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		SyncInterval:      15 * time.Minute,
		Resources:         []commerce.Resource{commerce.ResourceOrders},
		MaxConcurrentJobs: 2,
		QueueSize:         100,
		JobTimeout:        10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        time.Minute,
		MaxHistory:        100,
	}
}

// ConfigFrom builds scheduler settings from the application config
func ConfigFrom(cfg config.SchedulerConfig) Config {
	c := DefaultConfig()
	c.Enabled = cfg.Enabled
	if cfg.SyncInterval > 0 {
		c.SyncInterval = cfg.SyncInterval
	}
	if cfg.MaxConcurrentJobs > 0 {
		c.MaxConcurrentJobs = cfg.MaxConcurrentJobs
	}
	if cfg.JobTimeout > 0 {
		c.JobTimeout = cfg.JobTimeout
	}
	if cfg.RetryAttempts >= 0 {
		c.RetryAttempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		c.RetryDelay = cfg.RetryDelay
	}
	return c
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MaxConcurrentJobs <= 0 || c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return ErrInvalidConfig
	}
	if c.Enabled && c.SyncInterval <= 0 {
		return ErrInvalidConfig
	}
	for _, r := range c.Resources {
		if !r.IsValid() {
			return ErrInvalidConfig
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// Option configures a SyncScheduler
type Option func(*SyncScheduler)

// WithRetryPolicy decides whether an executor error is worth retrying.
// By default every failure is retried.
func WithRetryPolicy(fn func(error) bool) Option {
	return func(s *SyncScheduler) {
		if fn != nil {
			s.retryable = fn
		}
	}
}

// SyncScheduler runs store syncs on a worker pool, either on demand or on a ticker
type SyncScheduler struct {
	config    Config
	executor  SyncExecutor
	logger    *zap.Logger
	retryable func(error) bool

	jobs      chan *SyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	retries   map[uuid.UUID]*time.Timer

	historyMu sync.RWMutex
	history   []*SyncJob
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(cfg Config, executor SyncExecutor, logger *zap.Logger, opts ...Option) (*SyncScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if executor == nil {
		return nil, ErrNoExecutor
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SyncScheduler{
		config:    cfg,
		executor:  executor,
		logger:    logger,
		retryable: func(error) bool { return true },
		retries:   make(map[uuid.UUID]*time.Timer),
		history:   make([]*SyncJob, 0, cfg.MaxHistory),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start starts the worker pool and, when enabled, the ticker
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.jobs = make(chan *SyncJob, s.config.QueueSize)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	if s.config.Enabled && s.config.SyncInterval > 0 {
		s.wg.Add(1)
		go s.tick(ctx)
	}

	s.logger.Info("Sync scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Bool("periodic", s.config.Enabled),
		zap.Duration("interval", s.config.SyncInterval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs until ctx expires
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	for id, t := range s.retries {
		t.Stop()
		delete(s.retries, id)
	}
	if s.cancel != nil {
		s.cancel()
	}
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler accepts jobs
func (s *SyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// SubmitJob enqueues a job without blocking
func (s *SyncScheduler) SubmitJob(job *SyncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("resource", string(job.Resource)),
			zap.String("trigger", string(job.Trigger)),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// ScheduleSync enqueues a sync of resource
func (s *SyncScheduler) ScheduleSync(resource commerce.Resource, trigger commerce.Trigger) (*SyncJob, error) {
	if !resource.IsValid() {
		return nil, ErrInvalidResource
	}
	job := NewSyncJob(resource, trigger, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *SyncScheduler) tick(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, resource := range s.config.Resources {
				if _, err := s.ScheduleSync(resource, commerce.TriggerScheduled); err != nil {
					s.logger.Warn("Failed to enqueue scheduled sync",
						zap.String("resource", string(resource)),
						zap.Error(err),
					)
				}
			}
		}
	}
}

func (s *SyncScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Sync worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sync worker stopping", zap.Int("worker_id", workerID))
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *SyncScheduler) processJob(ctx context.Context, job *SyncJob, workerID int) {
	if ctx.Err() != nil {
		job.Cancel()
		s.addToHistory(job)
		return
	}

	job.Start()
	s.logger.Info("Processing sync job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("resource", string(job.Resource)),
		zap.String("trigger", string(job.Trigger)),
		zap.Int("retry_count", job.RetryCount),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	summary, err := s.executor.Execute(jobCtx, job)
	switch {
	case err != nil && errors.Is(jobCtx.Err(), context.DeadlineExceeded):
		job.Fail(ErrJobTimeout.Error())
		err = ErrJobTimeout
	case err != nil:
		job.Fail(err.Error())
	default:
		job.Complete(summary)
	}

	if job.Status == JobStatusFailed {
		s.logger.Error("Sync job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("resource", string(job.Resource)),
			zap.String("error", job.Error),
		)
		s.addToHistory(job)
		if job.ShouldRetry() && (err == nil || s.retryable(err)) {
			s.retryLater(job)
		}
		return
	}

	fields := []zap.Field{
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("resource", string(job.Resource)),
		zap.String("status", string(job.Status)),
	}
	if summary != nil {
		fields = append(fields,
			zap.Int("fetched", summary.Fetched),
			zap.Int("created", summary.Created),
			zap.Int("updated", summary.Updated),
			zap.Int("errors", summary.Errors),
		)
	}
	s.logger.Info("Sync job completed", fields...)
	s.addToHistory(job)
}

// retryLater resubmits a copy of the failed job after its backoff delay
func (s *SyncScheduler) retryLater(failed *SyncJob) {
	retry := *failed
	retry.Summary = nil
	retry.StartedAt = nil
	retry.CompletedAt = nil
	delay := retry.ScheduleRetry(s.config.RetryDelay)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.retries[retry.ID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.retries, retry.ID)
		s.mu.Unlock()
		if err := s.SubmitJob(&retry); err != nil {
			s.logger.Warn("Failed to re-queue sync job for retry",
				zap.String("job_id", retry.ID.String()),
				zap.Error(err),
			)
		}
	})

	s.logger.Info("Sync job scheduled for retry",
		zap.String("job_id", retry.ID.String()),
		zap.Int("retry_count", retry.RetryCount),
		zap.Int("max_retries", retry.MaxRetries),
		zap.Duration("delay", delay),
	)
}

func (s *SyncScheduler) addToHistory(job *SyncJob) {
	snapshot := *job

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*SyncJob{&snapshot}, s.history...)
	if len(s.history) > s.config.MaxHistory {
		s.history = s.history[:s.config.MaxHistory]
	}
}

// GetJobHistory returns finished jobs, newest first
func (s *SyncScheduler) GetJobHistory(limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*SyncJob, limit)
	copy(result, s.history[:limit])
	return result
}
