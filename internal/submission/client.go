// Package submission posts contact form data to the form-processing endpoint
// and classifies the failures a browser would see.
package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/metrics"
)

const (
	// DefaultTimeout bounds one submission, response body included.
	DefaultTimeout = 30 * time.Second

	// ContentType is the request body encoding expected by the endpoint.
	ContentType = "application/x-www-form-urlencoded"

	// MaxResponseSize caps how much of a response body is read (1MB).
	MaxResponseSize = 1 << 20

	tracerName = "github.com/fnaconcept/site/internal/submission"
	op         = "submission.submit"
)

// Config contains configuration for the submission client.
type Config struct {
	// Endpoint is the base URL of the form-processing endpoint. Submissions
	// are posted to its root path.
	Endpoint string

	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient defaults to a client without its own timeout; the
	// submission timeout is applied through the request context.
	HTTPClient *http.Client
}

// Client sends contact form submissions.
type Client struct {
	url    string
	config Config
	client *http.Client
	tracer trace.Tracer
	logger *slog.Logger
}

// New creates a submission client.
func New(config Config, logger *slog.Logger) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("submission endpoint is required")
	}
	u, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse submission endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("submission endpoint must be http or https, got %q", config.Endpoint)
	}
	u.Path = "/"
	u.RawQuery = ""
	u.Fragment = ""

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		url:    u.String(),
		config: config,
		client: client,
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}, nil
}

// URL returns the address submissions are posted to.
func (c *Client) URL() string {
	return c.url
}

// Encode serializes a submission as a urlencoded body: the form-name
// discriminator first, then the fields in form order. Keys and values are
// percent-encoded, with spaces written as %20.
func Encode(data domain.ContactFormData) string {
	var b strings.Builder
	b.WriteString(escape(domain.FormNameField))
	b.WriteByte('=')
	b.WriteString(escape(domain.ContactFormName))
	for _, field := range domain.Fields {
		b.WriteByte('&')
		b.WriteString(escape(field))
		b.WriteByte('=')
		b.WriteString(escape(data.Get(field)))
	}
	return b.String()
}

// escape also encodes !'()* which encodeURIComponent leaves alone, so
// "L'entreprise" is sent as L%27entreprise. Both decode to the same value.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Submit posts data to the endpoint and returns the raw response body.
//
// Failures are logged and returned as *domain.Error: ETIMEOUT when the
// timeout expires, ENETWORK when no HTTP response arrived, EUPSTREAM with the
// status for any non-2xx answer.
func (c *Client) Submit(ctx context.Context, data domain.ContactFormData) ([]byte, error) {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "submission.Submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodPost),
			attribute.String("http.url", c.url),
			attribute.String("contact.service", data.Service),
		),
	)
	defer span.End()

	body, err := c.do(ctx, data)
	outcome := "success"
	if err != nil {
		outcome = domain.ErrorCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("form submission failed",
			"url", c.url,
			"code", outcome,
			"status", domain.ErrorHTTPStatus(err),
			"duration", time.Since(start),
			"error", err,
		)
	} else {
		span.SetStatus(codes.Ok, "")
		c.logger.Info("form submitted",
			"url", c.url,
			"service", data.Service,
			"duration", time.Since(start),
		)
	}
	span.SetAttributes(attribute.String("contact.outcome", outcome))
	metrics.SubmissionFinished(outcome, time.Since(start))

	return body, err
}

func (c *Client) do(ctx context.Context, data domain.ContactFormData) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(Encode(data)))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to build request")
	}
	req.Header.Set("Content-Type", ContentType)
	if v, ok := VisitorFrom(ctx); ok {
		if v.IP != "" {
			req.Header.Set("X-Forwarded-For", v.IP)
		}
		if v.UserAgent != "" {
			req.Header.Set("User-Agent", v.UserAgent)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
		return nil, domain.Upstream(op, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, classify(ctx, err)
	}
	return body, nil
}

// classify turns a transport error into a timeout or network error.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.Timeout(err, op)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.Timeout(err, op)
	}
	return domain.Network(err, op)
}
