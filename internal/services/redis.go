package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cleanwave/cleanwave-backend/internal/models"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// Resource kinds used in availability cache keys.
const (
	ResourceCleaner = "cleaner"
	ResourceDriver  = "driver"
)

// SetResourceAvailability mirrors a cleaner/driver availability flip into
// Redis. Best effort: the database row stays the source of truth.
func SetResourceAvailability(ctx context.Context, kind string, resourceID uint, status models.AvailabilityStatus) error {
	if RedisClient == nil {
		return nil
	}
	key := fmt.Sprintf("resource:availability:%s:%d", kind, resourceID)
	return RedisClient.Set(ctx, key, string(status), time.Hour).Err()
}

// GetResourceAvailability reads a mirrored availability flag. Returns
// redis.Nil when the key has expired or was never written.
func GetResourceAvailability(ctx context.Context, kind string, resourceID uint) (models.AvailabilityStatus, error) {
	if RedisClient == nil {
		return "", redis.Nil
	}
	key := fmt.Sprintf("resource:availability:%s:%d", kind, resourceID)
	result, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return "", err
	}
	return models.AvailabilityStatus(result), nil
}
