package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// El contador se crea con expiracion la primera vez, asi la ventana es fija.
const redisRecoveryAllowScript = `
redis.call("SET", KEYS[1], 0, "EX", ARGV[1], "NX")
return redis.call("INCR", KEYS[1])
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisRecoveryLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

func NewRedisRecoveryLimiter(client *redis.Client, window time.Duration, max int) RecoveryLimiter {
	if client == nil {
		return nil
	}
	if window < time.Second {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRecoveryLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "recovery:rl:",
	}
}

// Allow deja pasar si redis falla.
func (l *redisRecoveryLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key = normalizeEmail(key)
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	count, err := l.client.Eval(ctx, redisRecoveryAllowScript, []string{l.prefix + key}, int(l.window.Seconds())).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
