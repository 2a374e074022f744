package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fnaconcept/site/internal/metrics"
)

// Worker manages background job processing with concurrent workers.
type Worker struct {
	queue    Queue
	handlers map[string]JobHandler
	config   Config
	logger   *slog.Logger

	// Synchronization
	wg     sync.WaitGroup
	stopCh chan struct{}
	cancel context.CancelFunc
	once   sync.Once
}

// New creates a new Worker with the given configuration.
// The worker must be started with Start() and stopped with Stop().
func New(queue Queue, config Config, logger *slog.Logger) (*Worker, error) {
	if queue == nil {
		return nil, errors.New("queue is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Worker{
		queue:    queue,
		handlers: make(map[string]JobHandler),
		config:   config,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Register adds a job handler to the worker.
// The handler's Type() must be unique. Call this before Start().
func (w *Worker) Register(handler JobHandler) {
	jobType := handler.Type()
	if _, exists := w.handlers[jobType]; exists {
		w.logger.Warn("Overwriting existing handler", "job_type", jobType)
	}
	w.handlers[jobType] = handler
	w.logger.Debug("Registered job handler", "job_type", jobType)
}

// Start begins processing jobs with the configured number of concurrent workers.
func (w *Worker) Start(ctx context.Context) {
	// Pops are interrupted on Stop; running jobs keep their own deadline.
	popCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, popCtx, i+1)
	}

	w.logger.Info("Worker started", "concurrency", w.config.Concurrency)
}

// Stop signals all workers to stop and waits for them to finish.
// It respects the configured ShutdownTimeout.
func (w *Worker) Stop() {
	w.once.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopCh)
		if w.cancel != nil {
			w.cancel()
		}

		// Wait for workers with timeout
		done := make(chan struct{})
		go func() {
			w.wg.Wait()
			close(done)
		}()

		timer := time.NewTimer(w.config.ShutdownTimeout)
		defer timer.Stop()

		select {
		case <-done:
			w.logger.Info("Worker stopped gracefully")
		case <-timer.C:
			w.logger.Warn("Worker shutdown timeout exceeded, some jobs may still be running")
		}
	})
}

// runWorker is the main loop for a worker goroutine.
// It blocks on the queue until stopCh is closed.
func (w *Worker) runWorker(ctx, popCtx context.Context, workerID int) {
	defer w.wg.Done()

	logger := w.logger.With("worker_id", workerID)
	logger.Debug("Worker started")

	for {
		select {
		case <-w.stopCh:
			logger.Debug("Worker stopping")
			return
		case <-popCtx.Done():
			logger.Debug("Worker context done")
			return
		default:
		}

		job, err := w.queue.Pop(popCtx, w.config.PollInterval)
		if err != nil {
			if errors.Is(err, ErrEmpty) || popCtx.Err() != nil {
				continue
			}
			logger.Error("Failed to dequeue job", "error", err)
			w.pause(w.config.PollInterval)
			continue
		}

		w.processJob(ctx, job, logger)
	}
}

// processJob executes a single job and records its outcome.
func (w *Worker) processJob(ctx context.Context, job Job, logger *slog.Logger) {
	job.Attempts++
	logger = logger.With("job_id", job.ID, "job_type", job.Type, "attempt", job.Attempts)
	logger.Info("Processing job")

	start := time.Now()
	err := w.executeJob(ctx, job)
	duration := time.Since(start)

	if err == nil {
		logger.Info("Job completed", "duration", duration)
		metrics.JobFinished(job.Type, metrics.JobCompleted, duration)
		return
	}

	maxAttempts := job.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = w.config.MaxAttempts
	}

	switch {
	case IsPermanent(err):
		logger.Warn("Job failed with permanent error, will not retry", "error", err)
		metrics.JobFinished(job.Type, metrics.JobFailed, duration)
	case job.Attempts >= maxAttempts:
		logger.Error("Job failed, attempts exhausted", "error", err, "max_attempts", maxAttempts)
		metrics.JobFinished(job.Type, metrics.JobFailed, duration)
	default:
		logger.Warn("Job failed, will retry", "error", err)
		metrics.JobFinished(job.Type, metrics.JobRetried, duration)
		w.retry(ctx, job, logger)
	}
}

// executeJob runs the appropriate handler for the job with a timeout context.
func (w *Worker) executeJob(ctx context.Context, job Job) error {
	handler, ok := w.handlers[job.Type]
	if !ok {
		// No handler registered - this is a permanent error
		return Permanentf("no handler registered for job type: %s", job.Type)
	}

	// Shutdown must not cut a job short; JobTimeout bounds it instead.
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.JobTimeout)
	defer cancel()

	return handler.Handle(jobCtx, job.Payload)
}

// retry waits out the backoff and pushes the job back. A stop during the
// wait re-enqueues immediately so durable queues keep the job.
func (w *Worker) retry(ctx context.Context, job Job, logger *slog.Logger) {
	w.pause(w.backoff(job.Attempts))

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.queue.Push(pushCtx, job); err != nil {
		logger.Error("Failed to re-enqueue job", "error", err)
	}
}

// backoff returns RetryBaseDelay doubled for each attempt after the first.
func (w *Worker) backoff(attempts int) time.Duration {
	delay := w.config.RetryBaseDelay
	for i := 1; i < attempts && delay < time.Minute; i++ {
		delay *= 2
	}
	return delay
}

// pause sleeps for d or until Stop is called.
func (w *Worker) pause(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-w.stopCh:
	}
}
