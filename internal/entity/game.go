package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
)

// Mark is the content of a single board cell.
type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

const (
	FirstPosition = 1
	LastPosition  = 9
)

// WinCombos lists the 8 lines of the board as zero-based cell indexes.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Opponent returns the other player's mark.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

// Board is a 3x3 grid addressed by positions 1..9 in row-major order.
type Board struct {
	cells [9]Mark
}

func NewBoard() *Board {
	return &Board{}
}

// ValidPosition reports whether position addresses a cell of the board.
func ValidPosition(position int) bool {
	return position >= FirstPosition && position <= LastPosition
}

// Place puts mark on position. The board is left untouched on error.
func (that *Board) Place(position int, mark Mark) error {
	if !ValidPosition(position) {
		return fmt.Errorf("%w: position %d", apperror.ErrInvalidCell, position)
	}

	if that.cells[position-1] != EmptyCell {
		return fmt.Errorf("%w: position %d", apperror.ErrCellOccupied, position)
	}

	that.cells[position-1] = mark

	return nil
}

// Winner returns the mark that owns a complete line, if any.
func (that *Board) Winner() (Mark, bool) {
	for _, combo := range WinCombos {
		a, b, c := that.cells[combo[0]], that.cells[combo[1]], that.cells[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a, true
		}
	}

	return EmptyCell, false
}

func (that *Board) IsFull() bool {
	for _, cell := range that.cells {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Evaluate derives the outcome of the current position. A win is checked
// before a full board, so a full board with a line is reported as won.
func (that *Board) Evaluate() Outcome {
	if winner, ok := that.Winner(); ok {
		return Outcome{Result: ResultWon, Winner: winner}
	}

	if that.IsFull() {
		return Outcome{Result: ResultTied}
	}

	return Outcome{Result: ResultContinue}
}

func (that *Board) Reset() {
	that.cells = [9]Mark{}
}

// Cells returns a copy of the board content.
func (that *Board) Cells() [9]Mark {
	return that.cells
}

// At returns the mark on position, or EmptyCell for positions off the board.
func (that *Board) At(position int) Mark {
	if !ValidPosition(position) {
		return EmptyCell
	}

	return that.cells[position-1]
}
