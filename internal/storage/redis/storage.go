package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/sovereign-client/internal/storage"
)

// Storage keeps the session token in a single Redis key
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis-backed token store
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.TokenStore = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, tokenKey(s.cfg.Profile)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNoToken
		}
		return "", err
	}
	if token == "" {
		return "", storage.ErrNoToken
	}
	return token, nil
}

func (s *Storage) Set(ctx context.Context, token string) error {
	return s.client.Set(ctx, tokenKey(s.cfg.Profile), token, s.cfg.TokenTTL).Err()
}

func (s *Storage) Clear(ctx context.Context) error {
	return s.client.Del(ctx, tokenKey(s.cfg.Profile)).Err()
}
