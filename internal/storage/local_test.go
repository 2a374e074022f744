package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()}, testLogger())
	require.NoError(t, err)
	return s
}

func TestLocalStorage_PutGet(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	err := s.Put(ctx, "inquiries/2026/10/19/a.json", strings.NewReader(`{"a":1}`), PutOptions{})
	require.NoError(t, err)

	rc, info, err := s.Get(ctx, "inquiries/2026/10/19/a.json")
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(body))
	assert.Equal(t, int64(7), info.Size)
	assert.Equal(t, "application/json", info.ContentType)
}

func TestLocalStorage_PutExistingKey(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k.json", strings.NewReader("1"), PutOptions{}))

	err := s.Put(ctx, "k.json", strings.NewReader("2"), PutOptions{})
	assert.True(t, IsKeyExists(err))

	require.NoError(t, s.Put(ctx, "k.json", strings.NewReader("3"), PutOptions{Overwrite: true}))
	rc, _, err := s.Get(ctx, "k.json")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "3", string(body))
}

func TestLocalStorage_PutTooLarge(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	err := s.Put(ctx, "big.json", strings.NewReader("0123456789"), PutOptions{MaxSize: 5})
	assert.ErrorIs(t, err, ErrTooLarge)

	exists, err := s.Exists(ctx, "big.json")
	require.NoError(t, err)
	assert.False(t, exists, "oversized object must not be left behind")
}

func TestLocalStorage_InvalidKeys(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	for _, key := range []string{"", "../escape.json", "a/../../b.json", "."} {
		t.Run(key, func(t *testing.T) {
			err := s.Put(ctx, key, strings.NewReader("x"), PutOptions{})
			assert.True(t, IsInvalidKey(err), "got %v", err)
		})
	}
}

func TestLocalStorage_GetMissing(t *testing.T) {
	s := newTestLocal(t)

	_, _, err := s.Get(context.Background(), "missing.json")
	assert.True(t, IsNotFound(err))

	var se *ObjectError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Get", se.Op)
	assert.Equal(t, "missing.json", se.Key)
}

func TestLocalStorage_DeleteIsIdempotent(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "d.json", strings.NewReader("x"), PutOptions{}))
	require.NoError(t, s.Delete(ctx, "d.json"))
	require.NoError(t, s.Delete(ctx, "d.json"))

	exists, err := s.Exists(ctx, "d.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_List(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	for _, key := range []string{
		"inquiries/2026/10/19/b.json",
		"inquiries/2026/10/19/a.json",
		"inquiries/2026/10/20/c.json",
		"other/x.json",
	} {
		require.NoError(t, s.Put(ctx, key, strings.NewReader("{}"), PutOptions{}))
	}

	objects, err := s.List(ctx, "inquiries/2026/10/19/")
	require.NoError(t, err)
	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"inquiries/2026/10/19/a.json", "inquiries/2026/10/19/b.json"}, keys)

	objects, err = s.List(ctx, "inquiries/")
	require.NoError(t, err)
	assert.Len(t, objects, 3)

	objects, err = s.List(ctx, "inquiries/2027/")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestLocalStorage_CanceledContext(t *testing.T) {
	s := newTestLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Put(ctx, "x.json", strings.NewReader("x"), PutOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	s, err := New(ProviderLocal, LocalConfig{BasePath: t.TempDir()}, R2Config{}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New("gcs", LocalConfig{}, R2Config{}, testLogger())
	assert.Error(t, err)

	_, err = New(ProviderR2, LocalConfig{}, R2Config{}, testLogger())
	assert.Error(t, err, "bucket is required")
}
