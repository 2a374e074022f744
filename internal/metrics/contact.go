package metrics

import "time"

// SubmissionFinished records the outcome and latency of an outgoing
// contact form submission.
func SubmissionFinished(outcome string, duration time.Duration) {
	ContactSubmissionsTotal.WithLabelValues(outcome).Inc()
	ContactSubmissionDuration.Observe(duration.Seconds())
}

// ContactValidationFailed records a submit attempt stopped by field errors.
func ContactValidationFailed() {
	ContactValidationFailures.Inc()
}

// InquiryReceived records an incoming submission at the form endpoint.
func InquiryReceived(result string) {
	InquiriesReceivedTotal.WithLabelValues(result).Inc()
}

// NotificationSent records a sent inquiry e-mail.
func NotificationSent(kind string) {
	NotificationsSent.WithLabelValues(kind).Inc()
}

// ImageVariantServed records a resized image request.
func ImageVariantServed(cacheHit bool) {
	if cacheHit {
		ImageVariantsTotal.WithLabelValues("hit").Inc()
		return
	}
	ImageVariantsTotal.WithLabelValues("miss").Inc()
}

// Job outcomes recorded by JobFinished.
const (
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobRetried   = "retried"
)

// JobFinished records one attempt of a background job. Only completed
// attempts observe the duration histogram.
func JobFinished(jobType, outcome string, duration time.Duration) {
	if outcome == JobRetried {
		JobRetriesTotal.WithLabelValues(jobType).Inc()
		return
	}
	JobsTotal.WithLabelValues(jobType, outcome).Inc()
	if outcome == JobCompleted {
		JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
	}
}
