package ssredis_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"

	"learn.throttlegate/internal/statsink"
	ssredis "learn.throttlegate/internal/statsink/redis"
	"learn.throttlegate/types"
)

var mockTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func sampleStats() types.Stats {
	last := mockTime.Add(5 * time.Second)
	return types.Stats{
		Label:      "api_throttle",
		Interval:   time.Second,
		CreatedAt:  mockTime,
		LastRunAt:  &last,
		TotalCalls: 3,
		Lifetime:   10 * time.Second,
		Rate:       0.3,
	}
}

func TestPublish_RedisSink(t *testing.T) {
	ctx := context.Background()
	keyPrefix := "test_sink"
	ttl := time.Minute
	stats := sampleStats()
	expectedKey := "test_sink:stats:api_throttle"

	payload, err := statsink.Encode(stats)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	t.Run("SuccessfulPublish", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		sink := ssredis.NewSink(db, keyPrefix, ttl)

		mock.ExpectSet(expectedKey, string(payload), ttl).SetVal("OK")

		if err := sink.Publish(ctx, stats); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Redis mock expectations not met: %s", err)
		}
	})

	t.Run("RedisError", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		sink := ssredis.NewSink(db, keyPrefix, ttl)
		redisErr := errors.New("redis unavailable")

		mock.ExpectSet(expectedKey, string(payload), ttl).SetErr(redisErr)

		err := sink.Publish(ctx, stats)
		if err == nil {
			t.Fatal("Expected an error but got nil")
		}
		if !strings.Contains(err.Error(), redisErr.Error()) {
			t.Fatalf("Expected error containing '%s', got '%v'", redisErr.Error(), err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Redis mock expectations not met: %s", err)
		}
	})
}
