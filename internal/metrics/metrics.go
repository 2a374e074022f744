package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fnaconcept"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Background job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Total number of jobs processed",
		},
		[]string{"type", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Job execution time distribution",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"type"},
	)

	JobRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_retries_total",
			Help:      "Total number of job retry attempts",
		},
		[]string{"type"},
	)
)

// Contact form metrics
var (
	// ContactSubmissionsTotal counts outgoing submissions by outcome:
	// "success", "timeout", "network" or "upstream".
	ContactSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_submissions_total",
			Help:      "Total number of contact form submissions sent to the form endpoint",
		},
		[]string{"outcome"},
	)

	ContactSubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contact_submission_duration_seconds",
			Help:      "Contact form submission latency distribution",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// ContactValidationFailures counts submit attempts rejected by field
	// validation before any request was sent.
	ContactValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_validation_failures_total",
			Help:      "Total number of contact form submit attempts with invalid fields",
		},
	)

	// InquiriesReceivedTotal counts submissions arriving at the form endpoint
	// by result: "received", "duplicate" or "invalid".
	InquiriesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inquiries_received_total",
			Help:      "Total number of inquiries received by the form endpoint",
		},
		[]string{"result"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of inquiry e-mails sent",
		},
		[]string{"kind"}, // "notification" or "acknowledgement"
	)
)

// Image metrics
var (
	ImageVariantsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_variants_total",
			Help:      "Total number of resized image requests",
		},
		[]string{"cache"}, // "hit" or "miss"
	)
)
