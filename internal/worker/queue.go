package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmpty is returned by Queue.Pop when no job arrived within the timeout.
	ErrEmpty = errors.New("queue empty")

	// ErrFull is returned by MemoryQueue.Push when the buffer is full.
	ErrFull = errors.New("queue full")
)

// Job is one unit of background work.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`     // completed runs so far
	MaxAttempts int             `json:"max_attempts"` // 0 means the worker default
	EnqueuedAt  time.Time       `json:"enqueued_at"`
}

// Queue is a FIFO of jobs.
type Queue interface {
	// Push appends a job.
	Push(ctx context.Context, job Job) error

	// Pop removes the oldest job, waiting up to timeout for one to arrive.
	// Returns ErrEmpty when the timeout expires.
	Pop(ctx context.Context, timeout time.Duration) (Job, error)
}

// =============================================================================
// Memory Queue
// =============================================================================

// MemoryQueue is a bounded in-process queue. Jobs are lost on restart.
type MemoryQueue struct {
	jobs chan Job
}

// NewMemoryQueue returns a queue holding up to size jobs.
func NewMemoryQueue(size int) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	return &MemoryQueue{jobs: make(chan Job, size)}
}

// Push appends a job. It never blocks: a full queue returns ErrFull.
func (q *MemoryQueue) Push(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrFull
	}
}

// Pop removes the oldest job.
func (q *MemoryQueue) Pop(ctx context.Context, timeout time.Duration) (Job, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return job, nil
	case <-timer.C:
		return Job{}, ErrEmpty
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Len returns the number of queued jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}
