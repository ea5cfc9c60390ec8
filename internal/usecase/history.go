package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

const historyWriteTimeout = 2 * time.Second

type roundRepo interface {
	Append(ctx context.Context, sessionID string, round entity.Round) error
}

// HistoryRecorder stores every finished round of one session. Storage
// failures are logged and never interrupt the game.
type HistoryRecorder struct {
	ctx       context.Context
	logger    *slog.Logger
	roundRepo roundRepo
	sessionID string
	self      entity.Mark
	now       func() time.Time

	round    int
	opponent string
}

func NewHistoryRecorder(ctx context.Context, logger *slog.Logger, roundRepo roundRepo, sessionID string, self entity.Mark) *HistoryRecorder {
	return &HistoryRecorder{
		ctx:       ctx,
		logger:    logger.With("component", "history", "session_id", sessionID),
		roundRepo: roundRepo,
		sessionID: sessionID,
		self:      self,
		now:       time.Now,
	}
}

func (that *HistoryRecorder) RoundStarted(round int) {
	that.round = round
}

func (that *HistoryRecorder) BoardChanged([9]entity.Mark) {}

func (that *HistoryRecorder) MoveRejected(int, error) {}

func (that *HistoryRecorder) WaitingForOpponent(name string) {
	that.opponent = name
}

func (that *HistoryRecorder) RoundFinished(outcome entity.Outcome, _ entity.Stats) {
	log := that.logger.With("method", "RoundFinished")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(that.ctx), historyWriteTimeout)
	defer cancel()

	round := entity.NewRound(that.round, outcome, that.self, that.opponent, that.now())
	if err := that.roundRepo.Append(ctx, that.sessionID, round); err != nil {
		log.Warn("failed to record round", "round", that.round, "error", err)
	}
}
