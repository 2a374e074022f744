// Package storage archives inquiries as objects.
//
// This package defines a Storage interface with implementations for:
// - LocalStorage: File system storage for development
// - R2Storage: Cloudflare R2 (S3-compatible) storage for production
//
// Archive builds on a Storage to keep one JSON document per inquiry, keyed
// by reception date.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the interface for object storage operations.
//
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at the specified key with the given options.
	// Returns ErrKeyExists if the key already exists and opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the data at the specified key.
	// The caller must close the returned reader. Returns ErrNotFound if the
	// key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the specified key.
	// This operation is idempotent - no error is returned if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the objects whose key starts with prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType specifies the MIME type of the object.
	// If empty, it is detected from the key extension.
	ContentType string

	// MaxSize specifies the maximum allowed size in bytes.
	// If the data exceeds this size, ErrTooLarge is returned.
	// A value of 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string    // Object key/path
	Size         int64     // Size in bytes
	ContentType  string    // MIME type
	LastModified time.Time // Last modification time
	ETag         string    // Entity tag (if available)
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where objects are stored.
	// Example: "./storage" or "/var/lib/fnaconcept/archive"
	BasePath string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// Endpoint overrides the R2 endpoint derived from AccountID. Useful for
	// S3-compatible servers in development.
	Endpoint string

	// Region defaults to "auto"; R2 ignores it but the SDK requires one.
	Region string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)

// New returns the storage backend named by provider.
func New(provider string, local LocalConfig, r2 R2Config, logger *slog.Logger) (Storage, error) {
	switch provider {
	case ProviderLocal:
		return NewLocalStorage(local, logger)
	case ProviderR2:
		return NewR2Storage(r2, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", provider)
	}
}

// =============================================================================
// Key Generation Helpers
// =============================================================================

// InquiryPrefix is the key prefix of every archived inquiry.
const InquiryPrefix = "inquiries/"

// InquiryKey generates the storage key of an archived inquiry.
// Format: inquiries/{yyyy}/{mm}/{dd}/{id}.json, using the UTC date.
//
// Example: "inquiries/2026/10/19/987fcdeb-51a2-43f1-b9c4-12345678abcd.json"
func InquiryKey(receivedAt time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s%s.json", InquiryDayPrefix(receivedAt), id)
}

// InquiryDayPrefix returns the key prefix of the inquiries received on the
// UTC day of t.
func InquiryDayPrefix(t time.Time) string {
	return InquiryPrefix + t.UTC().Format("2006/01/02") + "/"
}
