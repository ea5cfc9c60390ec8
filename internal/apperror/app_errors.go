package apperror

import "errors"

var (
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrParse           = errors.New("payload is not a move in range 1-9")
	ErrUnknownToken    = errors.New("unknown token")
	ErrInvalidIdentity = errors.New("identity must be non-empty and alphanumeric")
	ErrProtocol        = errors.New("protocol violation")
	ErrSessionClosed   = errors.New("session is closed")
)

var ErrRoundFinished = errors.New("round is already finished")
