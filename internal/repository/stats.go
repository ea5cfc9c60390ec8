package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

var ErrPlayerNotFound = errors.New("player not found")

// StatsRepository keeps lifetime counters per player name across sessions.
type StatsRepository interface {
	Add(ctx context.Context, name string, stats entity.Stats) error
	GetByName(ctx context.Context, name string) (*entity.Stats, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

func statsKey(name string) string {
	return "player:" + name + ":stats"
}

// Add increments the stored counters by stats in one transaction.
func (that *dbStats) Add(ctx context.Context, name string, stats entity.Stats) error {
	key := statsKey(name)

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, "games_played", int64(stats.GamesPlayed))
		pipe.HIncrBy(ctx, key, "wins", int64(stats.Wins))
		pipe.HIncrBy(ctx, key, "losses", int64(stats.Losses))
		pipe.HIncrBy(ctx, key, "ties", int64(stats.Ties))

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add stats: %w", err)
	}

	return nil
}

func (that *dbStats) GetByName(ctx context.Context, name string) (*entity.Stats, error) {
	response := that.client.HGetAll(ctx, statsKey(name))

	values, err := response.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats by name: %w", err)
	}

	if len(values) == 0 {
		return nil, ErrPlayerNotFound
	}

	var stats entity.Stats
	if err = response.Scan(&stats); err != nil {
		return nil, fmt.Errorf("failed to scan stats: %w", err)
	}

	return &stats, nil
}
