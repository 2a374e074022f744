package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Redis Queue
// =============================================================================

// RedisQueue stores jobs in a Redis list: LPUSH to enqueue, BRPOP to
// dequeue, so the list is consumed oldest first.
type RedisQueue struct {
	rdb  redis.Cmdable
	name string
}

// NewRedisQueue returns a queue on the Redis list called name.
func NewRedisQueue(rdb redis.Cmdable, name string) *RedisQueue {
	return &RedisQueue{rdb: rdb, name: name}
}

// Push appends a job to the list.
func (q *RedisQueue) Push(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("redis LPUSH: %w", err)
	}
	return nil
}

// Pop blocks on BRPOP for up to timeout.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (Job, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Job{}, ErrEmpty
		}
		if ctx.Err() != nil {
			return Job{}, ctx.Err()
		}
		return Job{}, fmt.Errorf("redis BRPOP: %w", err)
	}
	// BRPOP answers [key, value]
	if len(res) != 2 {
		return Job{}, fmt.Errorf("redis BRPOP: unexpected reply of %d elements", len(res))
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return Job{}, fmt.Errorf("unmarshal job: %w", err)
	}
	return job, nil
}

// Len returns the number of queued jobs.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}

// Ping checks the Redis connection.
func (q *RedisQueue) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return q.rdb.Ping(ctx).Err()
}
