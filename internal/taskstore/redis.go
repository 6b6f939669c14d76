package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// abandonedTTL bounds the lifetime of tasks that never reach a terminal
// state (for example when the process dies mid-run).
const abandonedTTL = 24 * time.Hour

// RedisStore keeps task records in Redis so status survives across API
// instances. TTLs replace the janitor: finished tasks expire after the
// configured TTL, unfinished ones after a safety window.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func taskKey(id string) string { return "research:task:" + id }

func (s *RedisStore) Put(ctx context.Context, task Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	expiry := abandonedTTL
	if task.Finished() {
		expiry = s.ttl
	}

	if err := s.client.Set(ctx, taskKey(task.ID), data, expiry).Err(); err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Task, bool, error) {
	data, err := s.client.Get(ctx, taskKey(id)).Bytes()
	if err == redis.Nil {
		return Task{}, false, nil
	}
	if err != nil {
		return Task{}, false, fmt.Errorf("failed to load task: %w", err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return Task{}, false, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	return task, true, nil
}
