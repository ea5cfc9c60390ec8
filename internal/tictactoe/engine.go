package tictactoe

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/protocol"
)

// Conn is the established stream to the opponent. One call moves one token.
type Conn interface {
	ReadLine(ctx context.Context) ([]byte, error)
	WriteAll(ctx context.Context, payload []byte) error
}

type State int

const (
	WaitingForLocalMove State = iota
	WaitingForRemoteMove
)

func (that State) String() string {
	if that == WaitingForLocalMove {
		return "waiting-for-local-move"
	}
	return "waiting-for-remote-move"
}

// Players names both sides of the board. Mark is the local player's mark.
type Players struct {
	Local  string
	Remote string
	Mark   entity.Mark
}

// Engine alternates local and remote moves on one board. Exactly one side
// is to move at any time; a finished round accepts no more moves until NewRound.
type Engine struct {
	conn    Conn
	board   *entity.Board
	stats   *entity.Stats
	players Players

	state     State
	lastMover string
	finished  bool
}

func NewEngine(conn Conn, board *entity.Board, stats *entity.Stats, players Players) *Engine {
	engine := &Engine{
		conn:    conn,
		board:   board,
		stats:   stats,
		players: players,
	}

	engine.NewRound()

	return engine
}

// NewRound clears the board. X always opens the round.
func (that *Engine) NewRound() {
	that.board.Reset()
	that.finished = false

	if that.players.Mark == entity.PlayerX {
		that.state = WaitingForLocalMove
	} else {
		that.state = WaitingForRemoteMove
	}
}

// PlayLocal applies the local move and sends it. Invalid or occupied cells
// are reported without sending anything and leave the engine untouched.
func (that *Engine) PlayLocal(ctx context.Context, position int) (entity.Outcome, error) {
	if err := that.expect(WaitingForLocalMove); err != nil {
		return entity.Outcome{}, err
	}

	if err := that.board.Place(position, that.players.Mark); err != nil {
		return entity.Outcome{}, fmt.Errorf("invalid move: %w", err)
	}

	payload, err := protocol.EncodeMove(position)
	if err != nil {
		return entity.Outcome{}, fmt.Errorf("failed to encode move: %w", err)
	}

	if err = that.conn.WriteAll(ctx, payload); err != nil {
		return entity.Outcome{}, fmt.Errorf("failed to send move: %w", err)
	}

	that.lastMover = that.players.Local
	that.state = WaitingForRemoteMove

	return that.evaluate(), nil
}

// ReceiveRemote blocks for exactly one move from the opponent. Anything but
// a legal move is a protocol violation.
func (that *Engine) ReceiveRemote(ctx context.Context) (entity.Outcome, error) {
	if err := that.expect(WaitingForRemoteMove); err != nil {
		return entity.Outcome{}, err
	}

	payload, err := that.conn.ReadLine(ctx)
	if err != nil {
		return entity.Outcome{}, fmt.Errorf("failed to receive move: %w", err)
	}

	token, err := protocol.Decode(payload)
	if err != nil {
		return entity.Outcome{}, fmt.Errorf("%w: %w", apperror.ErrProtocol, err)
	}

	if token.Kind != protocol.KindMove {
		return entity.Outcome{}, fmt.Errorf("%w: expected move, got %s", apperror.ErrProtocol, token.Kind)
	}

	if err = that.board.Place(token.Position, that.players.Mark.Opponent()); err != nil {
		return entity.Outcome{}, fmt.Errorf("%w: remote move rejected: %w", apperror.ErrProtocol, err)
	}

	that.lastMover = that.players.Remote
	that.state = WaitingForLocalMove

	return that.evaluate(), nil
}

func (that *Engine) State() State {
	return that.state
}

// LastMover is the name of whoever moved last, empty before the first move.
func (that *Engine) LastMover() string {
	return that.lastMover
}

func (that *Engine) Finished() bool {
	return that.finished
}

func (that *Engine) expect(state State) error {
	if that.finished {
		return apperror.ErrRoundFinished
	}

	if that.state != state {
		return fmt.Errorf("%w: engine is %s", apperror.ErrNotYourTurn, that.state)
	}

	return nil
}

// evaluate derives the outcome and counts a finished round exactly once.
func (that *Engine) evaluate() entity.Outcome {
	outcome := that.board.Evaluate()
	if outcome.IsFinished() {
		that.finished = true
		that.stats.Record(outcome, that.players.Mark)
	}

	return outcome
}
