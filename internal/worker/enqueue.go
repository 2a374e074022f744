package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job type constants - these must match the JobHandler.Type() values
const (
	JobTypeNotifyInquiry = "notify_inquiry"
)

// NotifyInquiryPayload is the payload for inquiry notification jobs.
type NotifyInquiryPayload struct {
	InquiryID  uuid.UUID `json:"inquiry_id"`
	ArchiveKey string    `json:"archive_key"`
}

// EnqueueOption is a functional option for customizing enqueued jobs.
type EnqueueOption func(*Job)

// WithMaxAttempts sets the maximum number of attempts for the job.
func WithMaxAttempts(attempts int) EnqueueOption {
	return func(j *Job) {
		j.MaxAttempts = attempts
	}
}

// Enqueue marshals payload and pushes a new job of jobType.
func Enqueue(ctx context.Context, q Queue, jobType string, payload any, opts ...EnqueueOption) (Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	job := Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    payloadJSON,
		EnqueuedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&job)
	}

	if err := q.Push(ctx, job); err != nil {
		return Job{}, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// EnqueueNotifyInquiry enqueues the e-mails for an archived inquiry.
func EnqueueNotifyInquiry(ctx context.Context, q Queue, inquiryID uuid.UUID, archiveKey string, opts ...EnqueueOption) (Job, error) {
	payload := NotifyInquiryPayload{
		InquiryID:  inquiryID,
		ArchiveKey: archiveKey,
	}
	return Enqueue(ctx, q, JobTypeNotifyInquiry, payload, opts...)
}
