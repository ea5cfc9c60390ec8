package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseHandshaking
	PhaseInGame
	PhaseRoundEnd
	PhaseClosing
	PhaseClosed
)

func (that Phase) String() string {
	switch that {
	case PhaseConnecting:
		return "connecting"
	case PhaseHandshaking:
		return "handshaking"
	case PhaseInGame:
		return "in-game"
	case PhaseRoundEnd:
		return "round-end"
	case PhaseClosing:
		return "closing"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SessionError tags a fatal error with the phase it happened in.
type SessionError struct {
	Phase Phase
	Err   error
}

func (that *SessionError) Error() string {
	return fmt.Sprintf("session failed while %s: %v", that.Phase, that.Err)
}

func (that *SessionError) Unwrap() error {
	return that.Err
}

// Conn is the established stream to the opponent.
type Conn interface {
	ReadLine(ctx context.Context) ([]byte, error)
	WriteAll(ctx context.Context, payload []byte) error
	Close() error
}

// Prompter collects decisions from the local player.
type Prompter interface {
	PromptLocalMove(ctx context.Context) (int, error)
	PromptRematchDecision(ctx context.Context) (bool, error)
}

// Observer is told about everything the local player should see.
type Observer interface {
	RoundStarted(round int)
	BoardChanged(cells [9]entity.Mark)
	MoveRejected(position int, err error)
	WaitingForOpponent(name string)
	RoundFinished(outcome entity.Outcome, stats entity.Stats)
}

// Observers fans every event out to each observer in order.
type Observers []Observer

func (that Observers) RoundStarted(round int) {
	for _, observer := range that {
		observer.RoundStarted(round)
	}
}

func (that Observers) BoardChanged(cells [9]entity.Mark) {
	for _, observer := range that {
		observer.BoardChanged(cells)
	}
}

func (that Observers) MoveRejected(position int, err error) {
	for _, observer := range that {
		observer.MoveRejected(position, err)
	}
}

func (that Observers) WaitingForOpponent(name string) {
	for _, observer := range that {
		observer.WaitingForOpponent(name)
	}
}

func (that Observers) RoundFinished(outcome entity.Outcome, stats entity.Stats) {
	for _, observer := range that {
		observer.RoundFinished(outcome, stats)
	}
}
