package sessionlock

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// releaseScript deletes the key only while it still holds our value.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds session locks as Redis keys, shared by server processes on
// any number of hosts.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	host   string
	pid    int
	alive  func(pid int) bool
}

// NewRedisLocker returns a RedisLocker storing keys under prefix.
func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: prefix,
		host:   hostname(),
		pid:    os.Getpid(),
		alive:  processAlive,
	}
}

func (rl *RedisLocker) key(id Identity) string {
	return rl.prefix + id.Name()
}

// TryAcquire sets the identity key if absent.
func (rl *RedisLocker) TryAcquire(ctx context.Context, id Identity) (Guard, error) {
	holder := Holder{Host: rl.host, PID: rl.pid, Token: uuid.NewString(), AcquiredAt: time.Now().UTC()}

	value, err := json.Marshal(holder)
	if err != nil {
		return nil, errors.Wrap(err, "encode lock holder")
	}

	ok, err := rl.client.SetNX(ctx, rl.key(id), value, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "acquire session lock for %s", id)
	}

	if !ok {
		return nil, ErrAlreadyHeld
	}

	return &redisGuard{locker: rl, id: id, value: string(value)}, nil
}

// ForceRelease deletes the identity key.
func (rl *RedisLocker) ForceRelease(ctx context.Context, id Identity) error {
	if err := rl.client.Del(ctx, rl.key(id)).Err(); err != nil {
		return errors.Wrapf(err, "force release session lock for %s", id)
	}

	zerolog.Ctx(ctx).Warn().Str("lock", id.Name()).Msg("session lock force released")

	return nil
}

// Reconcile deletes keys held by processes of this host that no longer exist.
// Holders on other hosts are left to their own host's reconciliation.
func (rl *RedisLocker) Reconcile(ctx context.Context) (int, error) {
	l := zerolog.Ctx(ctx)

	var freed int

	iter := rl.client.Scan(ctx, 0, rl.prefix+"bms_sem_*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		value, err := rl.client.Get(ctx, key).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				l.Error().Err(err).Str("lock", key).Send()
			}

			continue
		}

		var h Holder
		if err := json.Unmarshal([]byte(value), &h); err != nil {
			l.Warn().Err(err).Str("lock", key).Msg("unreadable lock holder")
			continue
		}

		if h.Host != rl.host || h.PID == rl.pid || rl.alive(h.PID) {
			continue
		}

		n, err := releaseScript.Run(ctx, rl.client, []string{key}, value).Int()
		if err != nil {
			l.Error().Err(err).Str("lock", key).Send()
			continue
		}

		if n > 0 {
			freed++
			l.Info().Str("lock", key).Int("pid", h.PID).Msg("stale session lock removed")
		}
	}

	if err := iter.Err(); err != nil {
		return freed, errors.Wrap(err, "scan session locks")
	}

	return freed, nil
}

type redisGuard struct {
	locker *RedisLocker
	id     Identity
	value  string
	once   sync.Once
	err    error
}

func (g *redisGuard) Identity() Identity {
	return g.id
}

func (g *redisGuard) Release(ctx context.Context) error {
	g.once.Do(func() {
		err := releaseScript.Run(ctx, g.locker.client, []string{g.locker.key(g.id)}, g.value).Err()
		if err != nil {
			g.err = errors.Wrapf(err, "release session lock for %s", g.id)
			zerolog.Ctx(ctx).Error().Err(g.err).Send()
		}
	})

	return g.err
}
