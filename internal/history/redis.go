// Package history publishes finished-match records to a Redis queue for an
// out-of-process consumer (dashboards, replay tooling). Publishing is
// best-effort: a missing or unreachable Redis never affects gameplay.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tilerush/tilerush/internal/config"
)

// DefaultQueueName is the Redis list holding match records.
var DefaultQueueName = "tilerush_matches"

// MatchRecord is the minimal shape a downstream consumer needs.
type MatchRecord struct {
	RoomID       uuid.UUID `json:"room_id"`
	WinnerName   string    `json:"winner_name"`
	LongestWord  string    `json:"longest_word"`
	PlayerCount  int       `json:"player_count"`
	RoundsPlayed int       `json:"rounds_played"`
	Timestamp    int64     `json:"timestamp"`
}

// Publisher wraps a Redis client. A nil Publisher is valid and drops records.
type Publisher struct {
	rdb    *redis.Client
	queue  string
	logger *logrus.Logger
}

// Connect initializes a Publisher from REDIS_ADDR / REDIS_DB / HISTORY_QUEUE
// environment variables. Returns an error if Redis does not answer a ping.
func Connect(logger *logrus.Logger) (*Publisher, error) {
	addr := config.GetEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := config.GetEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{
		rdb:    rdb,
		queue:  config.GetEnv("HISTORY_QUEUE", DefaultQueueName),
		logger: logger,
	}, nil
}

// PublishMatch pushes a record onto the queue. Errors are logged and
// swallowed; the caller has already moved on.
func (p *Publisher) PublishMatch(ctx context.Context, record MatchRecord) {
	if p == nil || p.rdb == nil {
		return
	}
	if record.Timestamp == 0 {
		record.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(record)
	if err != nil {
		p.logger.Warnf("history: failed to marshal match record for room %s: %v", record.RoomID, err)
		return
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		p.logger.Warnf("history: failed to push match record for room %s: %v", record.RoomID, err)
	}
}
