package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
)

const (
	sessionKeyPrefix = "yojana:wizard:"
	lockTTL          = 30 * time.Second
)

// releaseLock deletes the lock key only if it still holds our token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// redisStore shares sessions across instances. Values are JSON with a TTL
// that is refreshed on every save and shortened once submitted.
type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) SessionStore {
	return &redisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

func lockKey(id string) string { return sessionKeyPrefix + id + ":lock" }

func (r *redisStore) Save(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, sessionKey(s.ID), b, sessionTTL(s, r.ttl)).Err(); err != nil {
		return apperror.Transport("save wizard session", err)
	}
	return nil
}

func (r *redisStore) Load(ctx context.Context, id string) (*Session, error) {
	b, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, apperror.Transport("load wizard session", err)
	}

	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, apperror.Transport("decode wizard session", err)
	}
	return &s, nil
}

func (r *redisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return apperror.Transport("delete wizard session", err)
	}
	return nil
}

func (r *redisStore) Lock(ctx context.Context, id string) (func(), error) {
	token := uuid.NewString()
	ok, err := r.rdb.SetNX(ctx, lockKey(id), token, lockTTL).Result()
	if err != nil {
		return nil, apperror.Transport("lock wizard session", err)
	}
	if !ok {
		return nil, ErrSessionBusy
	}

	return func() {
		// The request context may already be done; release with a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseLock.Run(releaseCtx, r.rdb, []string{lockKey(id)}, token).Err()
	}, nil
}
