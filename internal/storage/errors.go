package storage

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
)

var (
	ErrNotFound     = errors.New("object not found")
	ErrKeyExists    = errors.New("object already exists")
	ErrInvalidKey   = errors.New("invalid storage key")
	ErrTooLarge     = errors.New("object exceeds maximum size")
	ErrAccessDenied = errors.New("access denied")
)

// ObjectError records the operation and key of a failed storage call.
// The sentinel errors above stay reachable through errors.Is.
type ObjectError struct {
	Op  string // Put, Get, Delete, Exists, List
	Key string // key, or prefix for List
	Err error
}

func (e *ObjectError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", strings.ToLower(e.Op), e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", strings.ToLower(e.Op), e.Key, e.Err)
}

func (e *ObjectError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsKeyExists reports whether err means an inquiry was already archived under the key.
func IsKeyExists(err error) bool {
	return errors.Is(err, ErrKeyExists)
}

// IsInvalidKey reports whether err means the key was rejected.
func IsInvalidKey(err error) bool {
	return errors.Is(err, ErrInvalidKey)
}

// contentTypeFor returns declared when set, else a type guessed from the key.
// Archived inquiries are JSON regardless of the platform's mime table.
func contentTypeFor(declared, key string) string {
	if declared != "" {
		return declared
	}
	switch ext := strings.ToLower(path.Ext(key)); ext {
	case ".json":
		return "application/json"
	case "":
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return "application/octet-stream"
}
