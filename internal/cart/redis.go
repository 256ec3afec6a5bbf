package cart

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matiascortez/vestia-backend/pkg/logger"
	"github.com/matiascortez/vestia-backend/pkg/redis"
)

// cartKV is the slice of the redis client the store needs.
type cartKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisStore persists one JSON cart blob per session. Storage failures are
// logged and swallowed: the shopper sees an empty cart, never an error page.
type RedisStore struct {
	kv   cartKV
	ttl  time.Duration
	logg *logger.Logger
	notifier
}

func NewRedisStore(kv cartKV, ttl time.Duration, logg *logger.Logger) *RedisStore {
	return &RedisStore{kv: kv, ttl: ttl, logg: logg}
}

func (s *RedisStore) Items(ctx context.Context, sessionID string) []Item {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(sessionID))
	if err != nil {
		if !redis.IsNotFound(err) {
			s.warn(ctx, sessionID, "cart storage read failed", err)
		}
		return nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.warn(ctx, sessionID, "cart blob corrupted, treating as empty", err)
		return nil
	}
	return items
}

func (s *RedisStore) Add(ctx context.Context, sessionID string, item Item) {
	items := mergeItem(s.Items(ctx, sessionID), item)
	s.persist(ctx, sessionID, items)
	s.notify(sessionID)
}

func (s *RedisStore) Remove(ctx context.Context, sessionID, key string) {
	items := removeItem(s.Items(ctx, sessionID), key)
	s.persist(ctx, sessionID, items)
	s.notify(sessionID)
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) {
	if err := s.kv.Del(ctx, s.kv.CartKey(sessionID)); err != nil {
		s.warn(ctx, sessionID, "cart storage delete failed", err)
	}
	s.notify(sessionID)
}

func (s *RedisStore) Subscribe(fn func(sessionID string)) func() {
	return s.subscribe(fn)
}

func (s *RedisStore) persist(ctx context.Context, sessionID string, items []Item) {
	encoded, err := json.Marshal(items)
	if err != nil {
		s.warn(ctx, sessionID, "cart encode failed", err)
		return
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(sessionID), string(encoded), s.ttl); err != nil {
		s.warn(ctx, sessionID, "cart storage write failed", err)
	}
}

func (s *RedisStore) warn(ctx context.Context, sessionID, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithCartSession(ctx, sessionID)
	ctx = s.logg.WithField(ctx, "error", err.Error())
	s.logg.Warn(ctx, msg)
}
