package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	shardedcache "github.com/simp-lee/cache"
)

// refreshKeyPrefix namespaces refresh tokens in both stores.
const refreshKeyPrefix = "refresh_token:"

// ErrTokenNotFound is returned when a refresh token is unknown or expired.
var ErrTokenNotFound = errors.New("refresh token not found")

// TokenStore keeps refresh tokens and the user each one was issued to.
type TokenStore interface {
	Save(ctx context.Context, token string, userID uint, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (uint, error)
	// Delete reports whether the token was present. A false result on a
	// token that Lookup just returned means another request consumed it.
	Delete(ctx context.Context, token string) (bool, error)
}

// RedisTokenStore keeps refresh tokens in redis with a native TTL.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore wraps an already connected client.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	if client == nil {
		panic("auth.NewRedisTokenStore: client must not be nil")
	}
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Lookup(ctx context.Context, token string) (uint, error) {
	raw, err := s.client.Get(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup refresh token: %w", err)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt refresh token entry: %w", err)
	}
	return uint(id), nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Del(ctx, refreshKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("delete refresh token: %w", err)
	}
	return n > 0, nil
}

// MemoryTokenStore keeps refresh tokens in process. Tokens are lost on
// restart, which only forces users to log in again.
type MemoryTokenStore struct {
	cache shardedcache.CacheInterface
}

// NewMemoryTokenStore creates an in-process store. Call Close when done.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		cache: shardedcache.NewCache(shardedcache.Options{
			CleanupInterval: 5 * time.Minute,
		}),
	}
}

func (s *MemoryTokenStore) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		return fmt.Errorf("save refresh token: ttl must be positive, got %v", ttl)
	}
	s.cache.SetWithExpiration(refreshKeyPrefix+token, userID, ttl)
	return nil
}

func (s *MemoryTokenStore) Lookup(ctx context.Context, token string) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	id, ok := shardedcache.GetTyped[uint](s.cache, refreshKeyPrefix+token)
	if !ok {
		return 0, ErrTokenNotFound
	}
	return id, nil
}

func (s *MemoryTokenStore) Delete(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.cache.Delete(refreshKeyPrefix + token), nil
}

// Close stops the background cleanup.
func (s *MemoryTokenStore) Close() {
	s.cache.Close()
}
