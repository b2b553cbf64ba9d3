// internal/report/cache.go
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"dialog-analyzer/internal/common/database"
	apperrors "dialog-analyzer/internal/common/errors"
	"dialog-analyzer/internal/common/logger"
	"dialog-analyzer/internal/models"
)

const cacheKeyPrefix = "dialog-analyzer:result:"

// ResultCache keeps run results in Redis keyed by a fingerprint of the
// input record set, so re-analyzing an unchanged snapshot is a lookup.
type ResultCache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewResultCache(rc *database.RedisClient, ttl time.Duration, log logger.Logger) *ResultCache {
	return &ResultCache{redis: rc, ttl: ttl, logger: log}
}

// Fingerprint derives a stable digest of a record set from each
// intent's identity and version. Record order does not matter.
func Fingerprint(intents []models.Intent) string {
	lines := make([]string, 0, len(intents))
	for idx := range intents {
		lines = append(lines, intents[idx].IntentID+"@"+strconv.FormatInt(intents[idx].Version, 10))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for a fingerprint. A miss is not an
// error.
func (c *ResultCache) Get(ctx context.Context, fingerprint string) (*models.Result, bool, error) {
	raw, err := c.redis.Get(ctx, cacheKeyPrefix+fingerprint)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, apperrors.NewCacheUnavailableError(err)
	}

	var result models.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		// A corrupt entry behaves like a miss and will be overwritten.
		c.logger.Warn("dropping undecodable cache entry", map[string]interface{}{
			"fingerprint": fingerprint,
			"error":       err.Error(),
		})
		return nil, false, nil
	}
	return &result, true, nil
}

// Put stores a result under its input fingerprint.
func (c *ResultCache) Put(ctx context.Context, fingerprint string, result *models.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	if err := c.redis.Set(ctx, cacheKeyPrefix+fingerprint, payload, c.ttl); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	c.logger.Debug("result cached", map[string]interface{}{
		"fingerprint": fingerprint,
		"ttl":         c.ttl.String(),
	})
	return nil
}

// Invalidate removes the entry for a fingerprint.
func (c *ResultCache) Invalidate(ctx context.Context, fingerprint string) error {
	if err := c.redis.Del(ctx, cacheKeyPrefix+fingerprint); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}
