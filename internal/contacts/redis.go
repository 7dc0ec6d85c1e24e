package contacts

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"zvgcli/pkg/contracts/domain"
)

// historyKey is the Redis hash holding listing id to contact time entries.
const historyKey = "zvg:contacts"

// RedisStore persists the history as a single Redis hash. Save clears and
// rewrites the hash in one transactional pipeline, so concurrent readers
// never observe a half-written history.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already configured client. The store takes
// ownership: Close closes the client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (domain.ContactHistory, error) {
	entries, err := s.client.HGetAll(ctx, historyKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load contact history: %w", err)
	}
	history := make(domain.ContactHistory, len(entries))
	for id, ts := range entries {
		history[id] = ts
	}
	return history, nil
}

func (s *RedisStore) Save(ctx context.Context, history domain.ContactHistory) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, historyKey)
	if len(history) > 0 {
		args := make([]interface{}, 0, len(history)*2)
		for id, ts := range history {
			args = append(args, id, ts)
		}
		pipe.HSet(ctx, historyKey, args...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save contact history: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
