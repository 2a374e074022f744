package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Public base URL of the site
	BaseURL string

	// Contact form submission
	// FormEndpoint is where the contact controller posts submissions. It
	// defaults to BaseURL, which serves the form-processing endpoint itself.
	FormEndpoint      string
	SubmissionTimeout time.Duration

	// Rate limiting of form POSTs, per visitor IP. POST /contact and the
	// form endpoint POST / count against separate limiters.
	ContactRateLimit  int
	ContactRateWindow time.Duration
	InboxRateLimit    int

	// Site content override (YAML). Empty means the embedded content.
	ContentPath string

	// SMTP Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// Inquiry notifications
	NotifyRecipients   []string
	SendAcknowledgment bool

	// Storage Configuration
	StorageProvider string // "local" or "r2"

	// Local Storage (development)
	LocalStoragePath string // Base directory for local file storage

	// R2 Storage (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Endpoint        string // Optional S3-compatible endpoint override

	// Redis backs the job queue and the duplicate filter when set.
	// Empty means in-process implementations.
	RedisURL  string
	QueueName string
	DedupTTL  time.Duration

	// Worker Configuration
	WorkerEnabled      bool
	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerJobTimeout   time.Duration
	WorkerMaxAttempts  int

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		SubmissionTimeout: getEnvDuration("SUBMISSION_TIMEOUT", 30*time.Second),
		ContactRateLimit:  getEnvInt("CONTACT_RATE_LIMIT", 5),
		ContactRateWindow: getEnvDuration("CONTACT_RATE_WINDOW", 10*time.Minute),
		InboxRateLimit:    getEnvInt("INBOX_RATE_LIMIT", 10),
		ContentPath:       getEnv("CONTENT_PATH", ""),

		// SMTP defaults for Mailhog (development)
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@fnaconcept.fr"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "FNA Concept"),

		NotifyRecipients:   getEnvList("NOTIFY_RECIPIENTS", []string{"contact.fnaconcept@gmail.com"}),
		SendAcknowledgment: getEnvBool("SEND_ACKNOWLEDGEMENT", true),

		// Storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),

		RedisURL:  getEnv("REDIS_URL", ""),
		QueueName: getEnv("QUEUE_NAME", "fnaconcept:jobs"),
		DedupTTL:  getEnvDuration("DEDUP_TTL", 24*time.Hour),

		// Worker defaults
		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 2),
		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		WorkerJobTimeout:   getEnvDuration("WORKER_JOB_TIMEOUT", 2*time.Minute),
		WorkerMaxAttempts:  getEnvInt("WORKER_MAX_ATTEMPTS", 3),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	cfg.FormEndpoint = getEnv("FORM_ENDPOINT", cfg.BaseURL)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	// Validate storage configuration
	if c.StorageProvider == "r2" {
		if c.R2AccountID == "" {
			return fmt.Errorf("R2_ACCOUNT_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if c.R2AccessKeyID == "" {
			return fmt.Errorf("R2_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if c.R2SecretAccessKey == "" {
			return fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 'r2'")
		}
		if c.R2BucketName == "" {
			return fmt.Errorf("R2_BUCKET_NAME is required when STORAGE_PROVIDER is 'r2'")
		}
	} else if c.StorageProvider != "local" {
		return fmt.Errorf("STORAGE_PROVIDER must be either 'local' or 'r2', got: %s", c.StorageProvider)
	}

	if c.FormEndpoint == "" {
		return fmt.Errorf("FORM_ENDPOINT or BASE_URL is required")
	}
	if c.SubmissionTimeout <= 0 {
		return fmt.Errorf("SUBMISSION_TIMEOUT must be positive, got: %s", c.SubmissionTimeout)
	}
	if c.ContactRateLimit <= 0 {
		return fmt.Errorf("CONTACT_RATE_LIMIT must be positive, got: %d", c.ContactRateLimit)
	}
	if c.InboxRateLimit <= 0 {
		return fmt.Errorf("INBOX_RATE_LIMIT must be positive, got: %d", c.InboxRateLimit)
	}
	if c.WorkerMaxAttempts < 1 {
		return fmt.Errorf("WORKER_MAX_ATTEMPTS must be at least 1, got: %d", c.WorkerMaxAttempts)
	}
	return nil
}

// IsDevelopment reports whether templates should be reloaded from disk.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList parses a comma-separated variable, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
