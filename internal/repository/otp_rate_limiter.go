package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPRateLimiter throttles how often verification codes can be requested for
// one email address.
type OTPRateLimiter interface {
	// Allow reports whether another code may be issued for the email within
	// the window. Redis errors fail open; throttling is best effort.
	Allow(ctx context.Context, email string, max int, window time.Duration) (bool, error)
}

type otpRateLimiter struct {
	client *redis.Client
}

func NewOTPRateLimiter(client *redis.Client) OTPRateLimiter {
	return &otpRateLimiter{client: client}
}

func (l *otpRateLimiter) Allow(ctx context.Context, email string, max int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("otp:count:%s", email)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return true, err
		}
	}

	return count <= int64(max), nil
}

// NoopRateLimiter disables throttling (tests, local dev without redis).
type NoopRateLimiter struct{}

func (NoopRateLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}
