package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================================
// LocalStorage Implementation
// =============================================================================

// LocalStorage implements the Storage interface using the local filesystem.
// Keys map to paths below basePath; resolvePath rejects anything that would
// leave it.
type LocalStorage struct {
	basePath string
	logger   *slog.Logger
}

// NewLocalStorage creates the base directory if needed and returns a
// LocalStorage rooted there.
func NewLocalStorage(cfg LocalConfig, logger *slog.Logger) (*LocalStorage, error) {
	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	logger.Info("initialized local storage", "base_path", absPath)

	return &LocalStorage{
		basePath: absPath,
		logger:   logger,
	}, nil
}

// Put writes data to a temporary file and renames it into place, so readers
// never observe a partial object.
func (s *LocalStorage) Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath, err := s.resolvePath(key)
	if err != nil {
		return &ObjectError{Op: "Put", Key: key, Err: err}
	}

	if !opts.Overwrite {
		if _, err := os.Stat(filePath); err == nil {
			return &ObjectError{Op: "Put", Key: key, Err: ErrKeyExists}
		}
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &ObjectError{Op: "Put", Key: key, Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return &ObjectError{Op: "Put", Key: key, Err: fmt.Errorf("failed to create file: %w", err)}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	reader := data
	if opts.MaxSize > 0 {
		reader = io.LimitReader(data, opts.MaxSize+1)
	}
	written, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &ObjectError{Op: "Put", Key: key, Err: fmt.Errorf("failed to write file: %w", err)}
	}
	if opts.MaxSize > 0 && written > opts.MaxSize {
		return &ObjectError{Op: "Put", Key: key, Err: ErrTooLarge}
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		return &ObjectError{Op: "Put", Key: key, Err: fmt.Errorf("failed to move file into place: %w", err)}
	}

	s.logger.Debug("stored file",
		"key", key,
		"size", written,
		"content_type", contentTypeFor(opts.ContentType, key),
	)
	return nil
}

// Get opens the object at key.
func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}

	filePath, err := s.resolvePath(key)
	if err != nil {
		return nil, ObjectInfo{}, &ObjectError{Op: "Get", Key: key, Err: err}
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ObjectInfo{}, &ObjectError{Op: "Get", Key: key, Err: ErrNotFound}
		}
		return nil, ObjectInfo{}, &ObjectError{Op: "Get", Key: key, Err: fmt.Errorf("failed to open file: %w", err)}
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ObjectInfo{}, &ObjectError{Op: "Get", Key: key, Err: fmt.Errorf("failed to stat file: %w", err)}
	}

	return file, s.info(key, stat), nil
}

// Delete removes the object at key. Missing objects are not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath, err := s.resolvePath(key)
	if err != nil {
		return &ObjectError{Op: "Delete", Key: key, Err: err}
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return &ObjectError{Op: "Delete", Key: key, Err: fmt.Errorf("failed to delete file: %w", err)}
	}

	s.logger.Debug("deleted file", "key", key)
	return nil
}

// Exists checks if an object exists at key.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	filePath, err := s.resolvePath(key)
	if err != nil {
		return false, &ObjectError{Op: "Exists", Key: key, Err: err}
	}

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &ObjectError{Op: "Exists", Key: key, Err: fmt.Errorf("failed to stat file: %w", err)}
	}
	return true, nil
}

// List walks the directory holding prefix and returns matching objects.
func (s *LocalStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.Contains(prefix, "..") {
		return nil, &ObjectError{Op: "List", Key: prefix, Err: ErrInvalidKey}
	}

	// Walk from the deepest directory fully named by the prefix.
	root := s.basePath
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		root = filepath.Join(s.basePath, filepath.FromSlash(prefix[:i]))
	}

	var out []ObjectInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".put-") {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		stat, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, s.info(key, stat))
		return nil
	})
	if err != nil {
		return nil, &ObjectError{Op: "List", Key: prefix, Err: err}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (s *LocalStorage) info(key string, stat os.FileInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  contentTypeFor("", key),
		LastModified: stat.ModTime(),
	}
}

// resolvePath converts a storage key to an absolute file path inside the
// base directory. Empty keys and keys containing ".." are rejected.
func (s *LocalStorage) resolvePath(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}

	absPath := filepath.Join(s.basePath, filepath.Clean(filepath.FromSlash(key)))
	if absPath == s.basePath || !strings.HasPrefix(absPath, s.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return absPath, nil
}
