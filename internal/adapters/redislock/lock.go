package redislock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tg_report_bot:session:"

var ErrLocked = errors.New("session is used by another process")

// удаляем/продлеваем только свой ключ
const (
	releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
	refreshScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("pexpire", KEYS[1], ARGV[2]) else return 0 end`
)

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Lock implements ports.SessionLock with a Redis lease.
type Lock struct {
	rdb redisClient
	ttl time.Duration
	log *slog.Logger
}

func New(rdb redisClient, ttl time.Duration, log *slog.Logger) *Lock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Lock{rdb: rdb, ttl: ttl, log: log}
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Acquire берёт lease и продлевает его каждые ttl/3, пока не вызван release.
func (l *Lock) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	fullKey := keyPrefix + key
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", fullKey, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, key)
	}
	l.log.Debug("session lock acquired", "key", fullKey)

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.refresh(fullKey, token, stop, done)

	var once sync.Once
	var releaseErr error
	release := func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			<-done
			if err := l.rdb.Eval(ctx, releaseScript, []string{fullKey}, token).Err(); err != nil {
				releaseErr = fmt.Errorf("redis release %s: %w", fullKey, err)
				return
			}
			l.log.Debug("session lock released", "key", fullKey)
		})
		return releaseErr
	}
	return release, nil
}

func (l *Lock) refresh(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
			n, err := l.rdb.Eval(ctx, refreshScript, []string{key}, token, l.ttl.Milliseconds()).Int64()
			cancel()
			if err != nil {
				l.log.Warn("session lock refresh failed", "key", key, "error", err)
				continue
			}
			if n == 0 {
				l.log.Error("session lock lost", "key", key)
				return
			}
		}
	}
}
