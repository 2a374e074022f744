package worker

import (
	"fmt"
	"time"
)

// Config holds the configuration for the background job worker.
type Config struct {
	// Concurrency is the number of worker goroutines to run in parallel.
	// Default: 2
	Concurrency int

	// PollInterval is how long an idle worker blocks waiting for a job
	// before checking for shutdown again.
	// Default: 5 seconds
	PollInterval time.Duration

	// JobTimeout is the maximum time a single job is allowed to run.
	// Default: 2 minutes
	JobTimeout time.Duration

	// ShutdownTimeout is how long Stop waits for running jobs to complete.
	// Default: 30 seconds
	ShutdownTimeout time.Duration

	// MaxAttempts is how many times a job runs before it is dropped as
	// failed. Jobs may carry their own limit.
	// Default: 3
	MaxAttempts int

	// RetryBaseDelay is the wait before the first retry; it doubles with
	// each further attempt.
	// Default: 2 seconds
	RetryBaseDelay time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Concurrency:     2,
		PollInterval:    5 * time.Second,
		JobTimeout:      2 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		MaxAttempts:     3,
		RetryBaseDelay:  2 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Concurrency > 100 {
		return fmt.Errorf("concurrency too high (max 100), got %d", c.Concurrency)
	}
	if c.PollInterval < 10*time.Millisecond {
		return fmt.Errorf("poll interval must be at least 10ms, got %v", c.PollInterval)
	}
	if c.JobTimeout < 10*time.Millisecond {
		return fmt.Errorf("job timeout must be at least 10ms, got %v", c.JobTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %v", c.ShutdownTimeout)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("retry base delay must not be negative, got %v", c.RetryBaseDelay)
	}
	return nil
}
