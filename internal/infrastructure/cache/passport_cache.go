package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nodeorb/scm-risk-engine/internal/domain/compliance"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/metrics"
)

const passportKeyPrefix = "scm:passport:"

// absentPassport marks a user known to have no passport
const absentPassport = "null"

// DefaultPassportTTL applies when the configured TTL is zero
const DefaultPassportTTL = 5 * time.Minute

// PassportCache is a read-through redis cache in front of a ComplianceRepository.
// Redis failures degrade to the repository; they never fail a lookup.
type PassportCache struct {
	next    compliance.ComplianceRepository
	client  *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Registry
}

var _ compliance.ComplianceRepository = (*PassportCache)(nil)

// NewPassportCache wraps next
func NewPassportCache(next compliance.ComplianceRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger, registry *metrics.Registry) *PassportCache {
	if ttl <= 0 {
		ttl = DefaultPassportTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PassportCache{
		next:    next,
		client:  client,
		ttl:     ttl,
		logger:  logger.Named("passport_cache"),
		metrics: registry,
	}
}

func passportKey(userID string) string {
	return passportKeyPrefix + userID
}

// GetCompliancePassport serves from redis, filling it from the repository on a miss
func (c *PassportCache) GetCompliancePassport(ctx context.Context, userID string) (*compliance.CompliancePassport, error) {
	key := passportKey(userID)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == absentPassport {
			c.metrics.RecordPassportCache(ctx, true)
			return nil, nil
		}
		var p compliance.CompliancePassport
		if uerr := json.Unmarshal(data, &p); uerr == nil {
			c.metrics.RecordPassportCache(ctx, true)
			return &p, nil
		}
		telemetry.WithTrace(ctx, c.logger).Warn("discarding corrupt cached passport", zap.String("user_id", userID))
	case errors.Is(err, redis.Nil):
	default:
		telemetry.WithTrace(ctx, c.logger).Warn("redis get failed", zap.String("user_id", userID), zap.Error(err))
	}

	c.metrics.RecordPassportCache(ctx, false)

	p, err := c.next.GetCompliancePassport(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, p)
	return p, nil
}

func (c *PassportCache) store(ctx context.Context, key string, p *compliance.CompliancePassport) {
	payload := []byte(absentPassport)
	if p != nil {
		var err error
		if payload, err = json.Marshal(p); err != nil {
			c.logger.Error("failed to marshal passport", zap.String("key", key), zap.Error(err))
			return
		}
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		telemetry.WithTrace(ctx, c.logger).Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the cached passport of userID
func (c *PassportCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, passportKey(userID)).Err()
}
