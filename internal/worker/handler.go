package worker

import (
	"context"
	"errors"
	"fmt"
)

// JobHandler processes jobs of one type.
type JobHandler interface {
	// Type is the Job.Type this handler accepts, such as JobTypeNotifyInquiry.
	Type() string

	// Handle runs one attempt of the job. A returned error schedules a retry
	// unless it is permanent or the job is out of attempts.
	Handle(ctx context.Context, payload []byte) error
}

// PermanentError fails a job without further attempts: a payload that does
// not decode, an inquiry missing from the archive, a missing recipient list.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// NewPermanentError wraps err so the job is not retried.
func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// Permanentf is NewPermanentError over fmt.Errorf.
func Permanentf(format string, args ...any) error {
	return &PermanentError{Err: fmt.Errorf(format, args...)}
}

// IsPermanent reports whether err or anything it wraps is a PermanentError.
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}
