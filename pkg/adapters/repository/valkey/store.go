// Package valkey keeps the client session token in Valkey (Redis-compatible)
// for setups where several workstations share one admin session.
package valkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
)

// DefaultKey namespaces the token in Valkey.
const DefaultKey = "limestar:auth_token"

// Connect parses a redis:// URL, creates a client and verifies it with a ping.
func Connect(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("valkey url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Debug("valkey connected", "addr", opts.Addr)
	return client, nil
}

// TokenStore implements ports.TokenStore on a single Valkey key
type TokenStore struct {
	client *redis.Client
	key    string
}

var _ ports.TokenStore = (*TokenStore)(nil)

func NewTokenStore(client *redis.Client, key string) *TokenStore {
	if key == "" {
		key = DefaultKey
	}
	return &TokenStore{client: client, key: key}
}

func (s *TokenStore) LoadToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("token get: %w", err)
	}
	return token, nil
}

// SaveToken stores the token without expiry; the server owns invalidation.
func (s *TokenStore) SaveToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("token set: %w", err)
	}
	return nil
}

func (s *TokenStore) ClearToken(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("token del: %w", err)
	}
	return nil
}

func (s *TokenStore) Close() error {
	return s.client.Close()
}
