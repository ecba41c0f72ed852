// Package draft keeps the unsaved working tree of each project in Redis so an
// interrupted editing session can be resumed before the next explicit save.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"curriculum/api/internal/curriculum"
)

const defaultTTL = 24 * time.Hour

var ErrNotFound = errors.New("draft not found or expired")

// Draft is a snapshot of a project's in-memory state between saves.
type Draft struct {
	ProjectID   string              `json:"project_id"`
	BaseVersion int                 `json:"base_version"`
	Sessions    curriculum.Tree     `json:"sessions"`
	Strategy    curriculum.Strategy `json:"strategy"`
	SavedAt     time.Time           `json:"saved_at"`
}

// RedisStore stores one draft per project under "draft:<project id>".
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{
		client: client,
		prefix: "draft:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(projectID string) string {
	return s.prefix + projectID
}

// Save overwrites the project's draft and restarts its TTL.
func (s *RedisStore) Save(ctx context.Context, d Draft) error {
	if d.ProjectID == "" {
		return errors.New("draft without project id")
	}
	if d.SavedAt.IsZero() {
		d.SavedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, s.key(d.ProjectID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, projectID string) (Draft, error) {
	payload, err := s.client.Get(ctx, s.key(projectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("load draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return Draft{}, fmt.Errorf("unmarshal draft: %w", err)
	}
	if d.Sessions == nil {
		d.Sessions = curriculum.Tree{}
	}
	return d, nil
}

// Discard drops the draft. Missing drafts are not an error.
func (s *RedisStore) Discard(ctx context.Context, projectID string) error {
	if err := s.client.Del(ctx, s.key(projectID)).Err(); err != nil {
		return fmt.Errorf("discard draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
