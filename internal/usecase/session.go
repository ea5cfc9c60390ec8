package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-duel/internal/tictactoe"
)

type SessionConfig struct {
	// ID correlates logs and round history. A random one is used when empty.
	ID   string
	Role entity.Role
	Name string
	// MoveTimeout bounds every wait on the opponent. Zero waits forever.
	MoveTimeout time.Duration
}

// Session drives one connection from handshake to teardown: rounds of moves,
// the rematch decision after each round and the closing exchange.
type Session struct {
	logger   *slog.Logger
	conn     Conn
	prompter Prompter
	observer Observer
	config   SessionConfig

	id     string
	phase  Phase
	remote string
	board  *entity.Board
	stats  entity.Stats
	engine *tictactoe.Engine

	releaseOnce sync.Once
}

func NewSession(logger *slog.Logger, conn Conn, prompter Prompter, observer Observer, config SessionConfig) *Session {
	id := config.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &Session{
		logger:   logger.With("component", "session", "session_id", id, "role", string(config.Role)),
		conn:     &timeoutConn{Conn: conn, timeout: config.MoveTimeout},
		prompter: prompter,
		observer: observer,
		config:   config,

		id:    id,
		phase: PhaseConnecting,
		board: entity.NewBoard(),
	}
}

func (that *Session) ID() string {
	return that.id
}

func (that *Session) Phase() Phase {
	return that.phase
}

// Opponent is the remote identity, empty before the handshake completes.
func (that *Session) Opponent() string {
	return that.remote
}

// LastMover is the name of whoever made the most recent move.
func (that *Session) LastMover() string {
	if that.engine == nil {
		return ""
	}

	return that.engine.LastMover()
}

// Run plays until the initiator declines a rematch or a fatal error occurs.
// The counters are returned in both cases and the connection is always released.
func (that *Session) Run(ctx context.Context) (entity.Stats, error) {
	log := that.logger.With("method", "Run")

	defer that.release()

	if err := that.handshake(ctx); err != nil {
		return that.stats, that.fail(err)
	}

	log.Info("handshake completed", "opponent", that.remote)

	that.engine = tictactoe.NewEngine(that.conn, that.board, &that.stats, tictactoe.Players{
		Local:  that.config.Name,
		Remote: that.remote,
		Mark:   that.config.Role.Mark(),
	})

	for round := 1; ; round++ {
		that.phase = PhaseInGame

		outcome, err := that.playRound(ctx, round)
		if err != nil {
			return that.stats, that.fail(err)
		}

		that.phase = PhaseRoundEnd
		that.observer.RoundFinished(outcome, that.stats)

		log.Info("round finished",
			"round", round,
			"result", outcome.Result.String(),
			"winner", string(outcome.Winner),
			"games_played", that.stats.GamesPlayed,
		)

		rematch, err := that.negotiateRematch(ctx)
		if err != nil {
			return that.stats, that.fail(err)
		}

		if !rematch {
			break
		}

		that.engine.NewRound()
	}

	that.phase = PhaseClosing
	if err := that.closeExchange(ctx); err != nil {
		return that.stats, that.fail(err)
	}

	that.phase = PhaseClosed
	log.Info("session closed", "stats", that.stats)

	return that.stats, nil
}

// handshake exchanges identities. The initiator speaks first.
func (that *Session) handshake(ctx context.Context) error {
	that.phase = PhaseHandshaking

	if err := protocol.ValidateIdentity(that.config.Name); err != nil {
		return fmt.Errorf("local identity: %w", err)
	}

	if that.config.Role == entity.RoleInitiator {
		if err := that.sendIdentity(ctx); err != nil {
			return err
		}

		return that.receiveIdentity(ctx)
	}

	if err := that.receiveIdentity(ctx); err != nil {
		return err
	}

	return that.sendIdentity(ctx)
}

func (that *Session) sendIdentity(ctx context.Context) error {
	payload, err := protocol.EncodeIdentity(that.config.Name)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	if err = that.conn.WriteAll(ctx, payload); err != nil {
		return fmt.Errorf("failed to send identity: %w", err)
	}

	return nil
}

func (that *Session) receiveIdentity(ctx context.Context) error {
	payload, err := that.conn.ReadLine(ctx)
	if err != nil {
		return fmt.Errorf("failed to receive identity: %w", err)
	}

	name, err := protocol.DecodeIdentity(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrProtocol, err)
	}

	that.remote = name

	return nil
}

func (that *Session) playRound(ctx context.Context, round int) (entity.Outcome, error) {
	that.observer.RoundStarted(round)
	that.observer.BoardChanged(that.board.Cells())

	for {
		var (
			outcome entity.Outcome
			err     error
		)

		if that.engine.State() == tictactoe.WaitingForLocalMove {
			outcome, err = that.playLocal(ctx)
		} else {
			that.observer.WaitingForOpponent(that.remote)
			outcome, err = that.engine.ReceiveRemote(ctx)
		}

		if err != nil {
			return entity.Outcome{}, err
		}

		that.observer.BoardChanged(that.board.Cells())

		if outcome.IsFinished() {
			return outcome, nil
		}
	}
}

// playLocal prompts until the player picks a legal cell.
func (that *Session) playLocal(ctx context.Context) (entity.Outcome, error) {
	log := that.logger.With("method", "playLocal")

	for {
		position, err := that.prompter.PromptLocalMove(ctx)
		if err != nil {
			return entity.Outcome{}, fmt.Errorf("failed to prompt move: %w", err)
		}

		outcome, err := that.engine.PlayLocal(ctx, position)
		if errors.Is(err, apperror.ErrInvalidCell) || errors.Is(err, apperror.ErrCellOccupied) {
			log.Debug("move rejected", "position", position, "error", err)
			that.observer.MoveRejected(position, err)

			continue
		}

		if err != nil {
			return entity.Outcome{}, err
		}

		return outcome, nil
	}
}

// negotiateRematch reports whether another round follows. The initiator
// decides and the responder waits for the verdict.
func (that *Session) negotiateRematch(ctx context.Context) (bool, error) {
	if that.config.Role.DecidesRematch() {
		rematch, err := that.prompter.PromptRematchDecision(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to prompt rematch: %w", err)
		}

		token := protocol.Close
		if rematch {
			token = protocol.Rematch
		}

		if err = that.send(ctx, token); err != nil {
			return false, err
		}

		return rematch, nil
	}

	token, err := that.receiveControl(ctx)
	if err != nil {
		return false, err
	}

	switch token.Kind {
	case protocol.KindRematch:
		return true, nil
	case protocol.KindClose:
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected rematch decision, got %s", apperror.ErrProtocol, token.Kind)
	}
}

// closeExchange acknowledges the close on the responder side and waits for
// the acknowledgement on the initiator side.
func (that *Session) closeExchange(ctx context.Context) error {
	if !that.config.Role.DecidesRematch() {
		return that.send(ctx, protocol.CloseAck)
	}

	token, err := that.receiveControl(ctx)
	if err != nil {
		return err
	}

	if token.Kind != protocol.KindCloseAck {
		return fmt.Errorf("%w: expected close acknowledgement, got %s", apperror.ErrProtocol, token.Kind)
	}

	return nil
}

func (that *Session) send(ctx context.Context, token protocol.Token) error {
	payload, err := protocol.Encode(token)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", token.Kind, err)
	}

	if err = that.conn.WriteAll(ctx, payload); err != nil {
		return fmt.Errorf("failed to send %s: %w", token.Kind, err)
	}

	return nil
}

func (that *Session) receiveControl(ctx context.Context) (protocol.Token, error) {
	payload, err := that.conn.ReadLine(ctx)
	if err != nil {
		return protocol.Token{}, fmt.Errorf("failed to receive control token: %w", err)
	}

	token, err := protocol.Decode(payload)
	if err != nil {
		return protocol.Token{}, fmt.Errorf("%w: %w", apperror.ErrProtocol, err)
	}

	return token, nil
}

func (that *Session) fail(err error) error {
	that.logger.Error("session failed", "phase", that.phase.String(), "error", err)

	return &SessionError{Phase: that.phase, Err: err}
}

// release closes the connection exactly once.
func (that *Session) release() {
	that.releaseOnce.Do(func() {
		if err := that.conn.Close(); err != nil {
			that.logger.Warn("failed to close connection", "error", err)
		}

		that.phase = PhaseClosed
	})
}

// timeoutConn bounds each read on the opponent.
type timeoutConn struct {
	Conn
	timeout time.Duration
}

func (that *timeoutConn) ReadLine(ctx context.Context) ([]byte, error) {
	if that.timeout <= 0 {
		return that.Conn.ReadLine(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, that.timeout)
	defer cancel()

	return that.Conn.ReadLine(ctx)
}
