package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		Concurrency:     2,
		PollInterval:    10 * time.Millisecond,
		JobTimeout:      time.Second,
		ShutdownTimeout: 2 * time.Second,
		MaxAttempts:     3,
		RetryBaseDelay:  0,
	}
}

// funcHandler adapts a function to JobHandler.
type funcHandler struct {
	jobType  string
	HandleFn func(ctx context.Context, payload []byte) error
}

func (h *funcHandler) Type() string { return h.jobType }

func (h *funcHandler) Handle(ctx context.Context, payload []byte) error {
	return h.HandleFn(ctx, payload)
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid default config", mutate: func(c *Config) {}, wantErr: false},
		{name: "concurrency too low", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: true},
		{name: "concurrency too high", mutate: func(c *Config) { c.Concurrency = 101 }, wantErr: true},
		{name: "poll interval too short", mutate: func(c *Config) { c.PollInterval = time.Millisecond }, wantErr: true},
		{name: "job timeout too short", mutate: func(c *Config) { c.JobTimeout = 0 }, wantErr: true},
		{name: "no shutdown timeout", mutate: func(c *Config) { c.ShutdownTimeout = 0 }, wantErr: true},
		{name: "no attempts", mutate: func(c *Config) { c.MaxAttempts = 0 }, wantErr: true},
		{name: "negative retry delay", mutate: func(c *Config) { c.RetryBaseDelay = -time.Second }, wantErr: true},
		{name: "zero retry delay", mutate: func(c *Config) { c.RetryBaseDelay = 0 }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "permanent error", err: NewPermanentError(context.Canceled), want: true},
		{name: "regular error", err: context.Canceled, want: false},
		{name: "wrapped permanent error", err: errors.Join(errors.New("outer"), NewPermanentError(io.EOF)), want: true},
		{name: "formatted permanent error", err: fmt.Errorf("job: %w", Permanentf("inquiry %d", 7)), want: true},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPermanent(tt.err))
		})
	}
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(2)

	_, err := q.Pop(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrEmpty)

	first, err := Enqueue(ctx, q, "a", map[string]int{"n": 1})
	require.NoError(t, err)
	_, err = Enqueue(ctx, q, "b", nil, WithMaxAttempts(5))
	require.NoError(t, err)
	assert.Equal(t, 2, q.Len())

	_, err = Enqueue(ctx, q, "c", nil)
	assert.ErrorIs(t, err, ErrFull)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Enqueue(cancelled, q, "d", nil)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.JSONEq(t, `{"n":1}`, string(got.Payload))

	got, err = q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Type)
	assert.Equal(t, 5, got.MaxAttempts)
}

func TestEnqueueNotifyInquiry(t *testing.T) {
	q := NewMemoryQueue(1)
	id := uuid.New()

	job, err := EnqueueNotifyInquiry(context.Background(), q, id, "inquiries/2026/10/19/x.json")
	require.NoError(t, err)
	assert.Equal(t, JobTypeNotifyInquiry, job.Type)
	assert.False(t, job.EnqueuedAt.IsZero())

	var payload NotifyInquiryPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, id, payload.InquiryID)
	assert.Equal(t, "inquiries/2026/10/19/x.json", payload.ArchiveKey)
}

func TestNew_RequiresQueue(t *testing.T) {
	_, err := New(nil, testConfig(), discardLogger())
	assert.Error(t, err)

	bad := testConfig()
	bad.Concurrency = 0
	_, err = New(NewMemoryQueue(1), bad, discardLogger())
	assert.Error(t, err)
}

func TestWorker_ProcessesJob(t *testing.T) {
	q := NewMemoryQueue(4)
	w, err := New(q, testConfig(), discardLogger())
	require.NoError(t, err)

	got := make(chan []byte, 1)
	w.Register(&funcHandler{
		jobType: "echo",
		HandleFn: func(ctx context.Context, payload []byte) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			got <- payload
			return nil
		},
	})

	w.Start(context.Background())
	defer w.Stop()

	_, err = Enqueue(context.Background(), q, "echo", map[string]string{"hello": "world"})
	require.NoError(t, err)

	select {
	case payload := <-got:
		assert.JSONEq(t, `{"hello":"world"}`, string(payload))
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestWorker_RetriesUntilMaxAttempts(t *testing.T) {
	q := NewMemoryQueue(4)
	w, err := New(q, testConfig(), discardLogger())
	require.NoError(t, err)

	var calls atomic.Int32
	w.Register(&funcHandler{
		jobType: "flaky",
		HandleFn: func(ctx context.Context, payload []byte) error {
			calls.Add(1)
			return errors.New("smtp unavailable")
		},
	})

	w.Start(context.Background())

	_, err = Enqueue(context.Background(), q, "flaky", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return calls.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 0, q.Len())
}

func TestWorker_JobMaxAttemptsOverridesDefault(t *testing.T) {
	q := NewMemoryQueue(4)
	w, err := New(q, testConfig(), discardLogger())
	require.NoError(t, err)

	var calls atomic.Int32
	w.Register(&funcHandler{
		jobType: "flaky",
		HandleFn: func(ctx context.Context, payload []byte) error {
			if calls.Add(1) < 5 {
				return errors.New("try again")
			}
			return nil
		},
	})

	w.Start(context.Background())

	_, err = Enqueue(context.Background(), q, "flaky", nil, WithMaxAttempts(5))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return calls.Load() == 5 }, 2*time.Second, 5*time.Millisecond)
	w.Stop()
}

func TestWorker_PermanentErrorIsNotRetried(t *testing.T) {
	q := NewMemoryQueue(4)
	w, err := New(q, testConfig(), discardLogger())
	require.NoError(t, err)

	var calls atomic.Int32
	w.Register(&funcHandler{
		jobType: "broken",
		HandleFn: func(ctx context.Context, payload []byte) error {
			calls.Add(1)
			return NewPermanentError(errors.New("bad payload"))
		},
	})

	w.Start(context.Background())

	_, err = Enqueue(context.Background(), q, "broken", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, q.Len())
}

func TestWorker_UnknownJobTypeIsDropped(t *testing.T) {
	q := NewMemoryQueue(4)
	w, err := New(q, testConfig(), discardLogger())
	require.NoError(t, err)

	w.Start(context.Background())

	_, err = Enqueue(context.Background(), q, "nobody", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return q.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	assert.Equal(t, 0, q.Len())
}

func TestWorker_StopIsIdempotent(t *testing.T) {
	w, err := New(NewMemoryQueue(1), testConfig(), discardLogger())
	require.NoError(t, err)

	w.Start(context.Background())
	w.Stop()
	w.Stop()
}

func TestWorker_Backoff(t *testing.T) {
	cfg := testConfig()
	cfg.RetryBaseDelay = time.Second
	w, err := New(NewMemoryQueue(1), cfg, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, time.Second, w.backoff(1))
	assert.Equal(t, 2*time.Second, w.backoff(2))
	assert.Equal(t, 4*time.Second, w.backoff(3))
	assert.Equal(t, 64*time.Second, w.backoff(20))
}

// =============================================================================
// Redis Queue
// =============================================================================

// fakeRedis is an in-memory list standing in for the commands RedisQueue uses.
type fakeRedis struct {
	redis.Cmdable

	mu      sync.Mutex
	lists   map[string][]string
	pushErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{lists: make(map[string][]string)}
}

func (f *fakeRedis) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return redis.NewIntResult(0, f.pushErr)
	}
	for _, v := range values {
		var s string
		switch val := v.(type) {
		case []byte:
			s = string(val)
		case string:
			s = val
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeRedis) BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		list := f.lists[key]
		if len(list) == 0 {
			continue
		}
		last := list[len(list)-1]
		f.lists[key] = list[:len(list)-1]
		return redis.NewStringSliceResult([]string{key, last}, nil)
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (f *fakeRedis) LLen(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func TestRedisQueue(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	q := NewRedisQueue(rdb, "test:jobs")

	_, err := q.Pop(ctx, time.Second)
	assert.ErrorIs(t, err, ErrEmpty)

	first, err := Enqueue(ctx, q, "a", map[string]int{"n": 1})
	require.NoError(t, err)
	second, err := Enqueue(ctx, q, "b", nil)
	require.NoError(t, err)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "a", got.Type)
	assert.JSONEq(t, `{"n":1}`, string(got.Payload))
	assert.True(t, first.EnqueuedAt.Equal(got.EnqueuedAt))

	got, err = q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestRedisQueue_Errors(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	q := NewRedisQueue(rdb, "test:jobs")

	rdb.pushErr = errors.New("connection refused")
	_, err := Enqueue(ctx, q, "a", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis LPUSH")

	rdb.lists["test:jobs"] = []string{"not json"}
	_, err = q.Pop(ctx, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal job")
}
