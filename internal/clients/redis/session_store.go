package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/meumosaico/backend/internal/platform/logger"
	"github.com/meumosaico/backend/internal/utils"
)

// SessionStore persists customization session snapshots under an
// opaque key. Snapshots carry artifact metadata and preview keys only;
// raw image bytes are never serialized, so a reload recovers previews
// but not the original uploads.
type SessionStore interface {
	Save(ctx context.Context, key string, snapshot []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

type sessionStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionStore(log *logger.Logger) (SessionStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := utils.GetEnvAsInt("SESSION_SNAPSHOT_TTL", 86400, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &sessionStore{
		log: log.With("service", "RedisSessionStore"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func (s *sessionStore) Save(ctx context.Context, key string, snapshot []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty snapshot key")
	}
	if err := s.rdb.Set(ctx, s.redisKey(key), snapshot, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}
	return nil
}

func (s *sessionStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}
	return raw, nil
}

func (s *sessionStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("delete session snapshot: %w", err)
	}
	return nil
}

func (s *sessionStore) Close() error {
	return s.rdb.Close()
}

func (s *sessionStore) redisKey(key string) string {
	return "customization:session:" + key
}
