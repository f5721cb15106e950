package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/curiocodex/curiocodex/store/cache"
)

// Session maps an opaque token to a user identity. Sessions expire by
// TTL; the store is the only authority on liveness.
type Session struct {
	Token    string `json:"-"`
	UserID   int32  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// SessionStore is the external session KV contract.
type SessionStore interface {
	// Create stores the session under its token with the store's TTL.
	Create(ctx context.Context, session *Session) error

	// Get returns the session for the token, or nil when absent or expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes the session.
	Delete(ctx context.Context, token string) error
}

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions in Redis with TTL-based expiry.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore connects to Redis and verifies the connection.
func NewRedisSessionStore(ctx context.Context, addr, password string, ttl time.Duration) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to ping redis")
	}
	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

func (s *RedisSessionStore) Create(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.Token, raw, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to store session")
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}
	session.Token = token
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}
	return nil
}

// Close releases the Redis connection pool.
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// MemorySessionStore keeps sessions in process memory. It backs dev and
// demo installs where no Redis is configured, and tests.
type MemorySessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		cache: cache.New(cache.Config{
			DefaultTTL:      ttl,
			CleanupInterval: time.Minute,
		}),
		ttl: ttl,
	}
}

func (s *MemorySessionStore) Create(ctx context.Context, session *Session) error {
	copied := *session
	s.cache.SetWithTTL(ctx, sessionKeyPrefix+session.Token, &copied, s.ttl)
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, token string) (*Session, error) {
	v, ok := s.cache.Get(ctx, sessionKeyPrefix+token)
	if !ok {
		return nil, nil
	}
	session, ok := v.(*Session)
	if !ok {
		return nil, nil
	}
	copied := *session
	copied.Token = token
	return &copied, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.cache.Delete(ctx, sessionKeyPrefix+token)
	return nil
}

// Close stops the backing cache.
func (s *MemorySessionStore) Close() error {
	s.cache.Close()
	return nil
}

var (
	_ SessionStore = (*RedisSessionStore)(nil)
	_ SessionStore = (*MemorySessionStore)(nil)
)
