package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	// ErrSchedulerRunning is returned when registering a job on a started scheduler
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrInvalidCronSpec is returned for unparseable cron expressions
	ErrInvalidCronSpec = errors.New("invalid cron expression")
)

// Job is a unit of scheduled background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Config holds scheduler settings
type Config struct {
	MaxConcurrentJobs int
	JobTimeout        time.Duration
}

// Scheduler runs registered jobs on cron schedules. Runs happen on the cron
// goroutine pool; a semaphore caps how many jobs execute at once, and each
// run gets its own deadline so a stuck job cannot wedge the schedule.
type Scheduler struct {
	cron      *cron.Cron
	config    Config
	logger    *zap.Logger
	semaphore chan struct{}

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler with the given settings
func NewScheduler(config Config, logger *zap.Logger) *Scheduler {
	if config.MaxConcurrentJobs <= 0 {
		config.MaxConcurrentJobs = 1
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 30 * time.Minute
	}
	return &Scheduler{
		cron:      cron.New(),
		config:    config,
		logger:    logger,
		semaphore: make(chan struct{}, config.MaxConcurrentJobs),
	}
}

// Register adds a job on the given cron schedule. All jobs must be
// registered before Start.
func (s *Scheduler) Register(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerRunning
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("%w: %q for job %s: %v", ErrInvalidCronSpec, spec, job.Name(), err)
	}

	s.logger.Info("Scheduled job registered",
		zap.String("job", job.Name()),
		zap.String("cron", spec))
	return nil
}

// Start begins executing registered jobs on their schedules
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.Int("max_concurrent_jobs", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout))
}

// Stop halts the schedule and waits for in-flight jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow executes a job immediately, outside its schedule, under the same
// concurrency cap and timeout. Used by the maintenance endpoints.
func (s *Scheduler) RunNow(job Job) {
	s.runJob(job)
}

func (s *Scheduler) runJob(job Job) {
	s.semaphore <- struct{}{}
	defer func() { <-s.semaphore }()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info("Scheduled job starting", zap.String("job", job.Name()))

	if err := job.Run(ctx); err != nil {
		s.logger.Error("Scheduled job failed",
			zap.String("job", job.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}

	s.logger.Info("Scheduled job finished",
		zap.String("job", job.Name()),
		zap.Duration("elapsed", time.Since(start)))
}
