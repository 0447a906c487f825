package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/fieldline/fieldline/internal/config"
)

const keyAdvisoryOrg = "advisor:org:%s"

const (
	// One sustained request per second with room for short bursts keeps
	// a single org from monopolizing the AI provider quota.
	advisoryRate  = 1.0
	advisoryBurst = 20
)

// AdvisoryLimiter throttles the advisory endpoints per organization.
// Without a redis address it stays disabled and admits everything.
type AdvisoryLimiter struct {
	enabled bool
	bucket  *TokenBucket
}

func NewAdvisoryLimiter(cfg config.Config) *AdvisoryLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &AdvisoryLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &AdvisoryLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
	}
}

func (l *AdvisoryLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *AdvisoryLimiter) AllowOrg(ctx context.Context, orgID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyAdvisoryOrg, strings.TrimSpace(orgID)), advisoryRate, advisoryBurst)
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}
