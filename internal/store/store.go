package store

import (
	"context"
	"fmt"
	"time"

	"github.com/eldtechnologies/linkdrop/internal/metrics"
)

// dateLayout is the calendar-day suffix of daily link keys.
const dateLayout = "2006-01-02"

// KV defines the key-value operations the webhook needs.
// Both RedisStore and MemoryStore implement this interface.
type KV interface {
	// Connection management
	Ping(ctx context.Context) error

	// Plain keys
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// TTL returns 0 for keys without expiry and a negative duration for missing keys.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Unordered string sets
	SetAdd(ctx context.Context, key string, members ...string) (int64, error)
	SetMembers(ctx context.Context, key string) ([]string, error)
}

// TopicClosedKey returns the key of a chat's closed-topic flag.
func TopicClosedKey(chatID int64) string {
	return fmt.Sprintf("topic:%d:closed", chatID)
}

// DailyLinksKey returns the key of a chat's link set for one UTC day.
func DailyLinksKey(chatID int64, date string) string {
	return fmt.Sprintf("links:%d:%s", chatID, date)
}

// DateKey formats t as the UTC calendar date used in daily link keys.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseDateKey validates a YYYY-MM-DD date.
func ParseDateKey(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// observe records the latency of a store operation.
func observe(op string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
