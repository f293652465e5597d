package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fedutinova/tlexport/internal/common"
)

type Service struct {
	client *redis.Client
}

func New(redisURL string) (*Service, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{client: client}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client
func (s *Service) Client() *redis.Client {
	return s.client
}

// only the holder's token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a held export lock.
type Lock struct {
	key   string
	token string
}

func (l *Lock) Key() string {
	return l.key
}

func lockKey(name string) string {
	return fmt.Sprintf("export_lock:%s", name)
}

// AcquireLock takes the lock for name, failing with common.ErrLocked when
// another run holds it. The lock expires after ttl.
func (s *Service) AcquireLock(ctx context.Context, name string, ttl time.Duration) (*Lock, error) {
	key := lockKey(name)
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		holder, _ := s.client.TTL(ctx, key).Result()
		return nil, fmt.Errorf("%s (expires in %s): %w", key, holder, common.ErrLocked)
	}

	return &Lock{key: key, token: token}, nil
}

// ReleaseLock deletes the lock if it is still ours.
func (s *Service) ReleaseLock(ctx context.Context, l *Lock) error {
	n, err := releaseScript.Run(ctx, s.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("lock %s expired or taken over", l.key)
	}
	return nil
}
