package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

// historyTTL is how long the rounds of a session are kept after its last round.
const historyTTL = 30 * 24 * time.Hour

// RoundRepository keeps the round history of each session.
type RoundRepository interface {
	Append(ctx context.Context, sessionID string, round entity.Round) error
	ListBySession(ctx context.Context, sessionID string) ([]entity.Round, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

type dbRound struct {
	client *redis.Client
}

func NewRoundRepository(client *redis.Client) RoundRepository {
	return &dbRound{
		client: client,
	}
}

func roundsKey(sessionID string) string {
	return "session:" + sessionID + ":rounds"
}

func (that *dbRound) Append(ctx context.Context, sessionID string, round entity.Round) error {
	roundJSON, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}

	key := roundsKey(sessionID)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, roundJSON)
		pipe.Expire(ctx, key, historyTTL)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append round: %w", err)
	}

	return nil
}

// ListBySession returns the rounds in the order they were played. An unknown
// session has no rounds.
func (that *dbRound) ListBySession(ctx context.Context, sessionID string) ([]entity.Round, error) {
	response, err := that.client.LRange(ctx, roundsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	rounds := make([]entity.Round, 0, len(response))
	for _, item := range response {
		var round entity.Round
		if err = json.Unmarshal([]byte(item), &round); err != nil {
			return nil, fmt.Errorf("failed to unmarshal round: %w", err)
		}

		rounds = append(rounds, round)
	}

	return rounds, nil
}

func (that *dbRound) DeleteBySession(ctx context.Context, sessionID string) error {
	if err := that.client.Del(ctx, roundsKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete rounds: %w", err)
	}

	return nil
}
