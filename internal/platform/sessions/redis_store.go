// Package sessions stores refresh-token sessions in Redis, keyed by the
// SHA-256 of the opaque token so the raw token never lands in the store.
package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bibliomemory/bibliomemory-backend/internal/domain"
)

type SessionData struct {
	UserID        uuid.UUID   `json:"user_id"`
	Role          domain.Role `json:"role"`
	InstitutionID *uuid.UUID  `json:"institution_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

type Store interface {
	Save(ctx context.Context, tokenHash string, data SessionData, expiresAt time.Time) error
	Lookup(ctx context.Context, tokenHash string) (SessionData, error)
	Revoke(ctx context.Context, tokenHash string) error
	Ping(ctx context.Context) error
	Close() error
}

type redisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(redisURL string) (Store, error) {
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

	return &redisStore{client: client, prefix: "refresh:"}, nil
}

func NewRedisStoreWithClient(client *redis.Client) Store {
	return &redisStore{client: client, prefix: "refresh:"}
}

func (s *redisStore) key(tokenHash string) string {
	return s.prefix + tokenHash
}

func (s *redisStore) Save(ctx context.Context, tokenHash string, data SessionData, expiresAt time.Time) error {
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now().UTC()
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := s.client.Set(ctx, s.key(tokenHash), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

var ErrNotFound = fmt.Errorf("refresh session not found or expired")

func (s *redisStore) Lookup(ctx context.Context, tokenHash string) (SessionData, error) {
	jsonData, err := s.client.Get(ctx, s.key(tokenHash)).Result()
	if err == redis.Nil {
		return SessionData{}, ErrNotFound
	}
	if err != nil {
		return SessionData{}, fmt.Errorf("lookup refresh session: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return SessionData{}, fmt.Errorf("unmarshal session data: %w", err)
	}
	return data, nil
}

func (s *redisStore) Revoke(ctx context.Context, tokenHash string) error {
	if err := s.client.Del(ctx, s.key(tokenHash)).Err(); err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
