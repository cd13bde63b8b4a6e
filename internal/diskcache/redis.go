package diskcache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
)

// RedisStore is the production Store, grounded on the teacher's
// internal/fabric/redis_store.go (a single *redis.Client constructed
// once and reused, errors wrapped with the operation and key attached).
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig configures the Redis-backed disk cache (spec §6).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL is how long a stored blob survives before Redis may evict it;
	// zero means no expiry.
	TTL time.Duration
}

// NewRedisStore connects to the given Redis instance. The connection is
// established lazily on first use by the go-redis client.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: cfg.TTL,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, cerr.Wrap(cerr.Transport, err, "disk cache get").With("key", key)
	}
	return v, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return cerr.Wrap(cerr.Transport, err, "disk cache put").With("key", key)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
