package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atul23g/multiDiseasePred/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

// Cache keeps extracted feature sets hot so the completion path does not hit
// postgres for every merge round-trip. Misses fall through to the repository;
// cache failures are logged and ignored.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Keys are scoped by user so a cache hit can never cross an ownership boundary.
func cacheKey(userID, reportID string) string {
	return fmt.Sprintf("report:extracted:%s:%s", userID, reportID)
}

func (c *Cache) PutExtracted(ctx context.Context, userID, reportID string, extracted map[string]interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(extracted)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to marshal extracted features for cache")
		return
	}
	if err := c.client.Set(ctx, cacheKey(userID, reportID), data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("report_id", reportID).Warn("failed to cache extracted features")
	}
}

func (c *Cache) GetExtracted(ctx context.Context, userID, reportID string) (map[string]interface{}, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, cacheKey(userID, reportID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).WithField("report_id", reportID).Warn("extracted feature cache read failed")
		}
		return nil, false
	}
	var extracted map[string]interface{}
	if err := json.Unmarshal(data, &extracted); err != nil {
		logger.Log.WithError(err).Warn("corrupt extracted feature cache entry")
		return nil, false
	}
	return extracted, true
}
