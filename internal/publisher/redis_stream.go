// Package publisher pushes game state changes onto a Redis stream so
// downstream consumers (models, alerting) see score updates without polling
// the CSV masters.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"ncaam_v1/scraper/internal/models"
)

const (
	liveStream  = "games.live.basketball_ncaam"
	finalStream = "games.final.basketball_ncaam"
)

// RedisStreamPublisher publishes game updates to Redis streams. Live and
// final games go to separate streams so consumers can subscribe to one.
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher connects to Redis and verifies the connection.
func NewRedisStreamPublisher(addr, password string, db int) (*RedisStreamPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Str("addr", addr).Msg("Connected to Redis")
	return &RedisStreamPublisher{client: client}, nil
}

// Close closes the Redis connection.
func (p *RedisStreamPublisher) Close() error {
	return p.client.Close()
}

// PublishGame publishes one game update. Final games go to the final
// stream, everything else to the live stream.
func (p *RedisStreamPublisher) PublishGame(ctx context.Context, game models.Game) error {
	stream := liveStream
	if game.IsFinal() {
		stream = finalStream
	}

	data, err := json.Marshal(game.ToRecord())
	if err != nil {
		return fmt.Errorf("failed to encode game %s: %w", game.GameID, err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish game %s: %w", game.GameID, err)
	}
	return nil
}
