// Package ratelimit implements sliding-window admission control backed
// by Redis, storing "one counter pair per (action, identifier, window)"
// rather than a JSON blob per key.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule describes one action's admission policy.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Limiter is a Redis-backed sliding-window rate limiter keyed by
// (action, identifier).
type Limiter struct {
	redis *redis.Client
	rules map[string]Rule
}

func New(client *redis.Client, rules map[string]Rule) *Limiter {
	return &Limiter{redis: client, rules: rules}
}

// Decision is the result of an admission check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Allow runs the weighted sliding-window check for (action, identifier)
// and increments on admission.
func (l *Limiter) Allow(ctx context.Context, action, identifier string) (Decision, error) {
	rule, ok := l.rules[action]
	if !ok {
		// Unregistered actions are not rate limited.
		return Decision{Allowed: true}, nil
	}

	windowMs := rule.Window.Milliseconds()
	now := time.Now().UnixMilli()
	windowStart := (now / windowMs) * windowMs

	baseKey := fmt.Sprintf("ratelimit:%s:%s", action, identifier)
	curKey := fmt.Sprintf("%s:cur:%d", baseKey, windowStart)
	prevKey := fmt.Sprintf("%s:cur:%d", baseKey, windowStart-windowMs)

	pipe := l.redis.Pipeline()
	curCmd := pipe.Get(ctx, curKey)
	prevCmd := pipe.Get(ctx, prevKey)
	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return Decision{}, err
	}

	current := parseCount(curCmd)
	previous := parseCount(prevCmd)

	elapsed := float64(now - windowStart)
	weight := 1.0 - elapsed/float64(windowMs)
	if weight < 0 {
		weight = 0
	}
	weighted := float64(current) + weight*float64(previous)

	if weighted >= float64(rule.Limit) {
		retryAfter := time.Duration(windowMs-(now-windowStart)) * time.Millisecond
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	incrPipe := l.redis.Pipeline()
	incrPipe.Incr(ctx, curKey)
	incrPipe.PExpire(ctx, curKey, rule.Window*3)
	if _, err := incrPipe.Exec(ctx); err != nil {
		log.Printf("ratelimit: failed to increment %s: %v", curKey, err)
	}

	return Decision{Allowed: true}, nil
}

func parseCount(cmd *redis.StringCmd) int {
	v, err := cmd.Int()
	if err != nil {
		return 0
	}
	return v
}

// DefaultRules is the per-action rate table. IP-scoped rules are
// enforced separately at the upgrade layer, see middleware.IPGuard.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		"CREATE_ROOM":    {Limit: 5, Window: 60 * time.Second},
		"JOIN_ROOM":      {Limit: 20, Window: 60 * time.Second},
		"START_GAME":     {Limit: 10, Window: 60 * time.Second},
		"SUBMIT_ANSWER":  {Limit: 50, Window: 10 * time.Second},
	}
}
