// Package console is the terminal side of a session: it prompts the local
// player and prints what happens on the board.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/protocol"
)

type line struct {
	text string
	err  error
}

// Console reads answers line by line from in and writes everything to out.
type Console struct {
	out  io.Writer
	mark entity.Mark

	in        io.Reader
	lines     chan line
	startOnce sync.Once
}

// New returns a console for the player holding mark.
func New(in io.Reader, out io.Writer, mark entity.Mark) *Console {
	return &Console{
		out:   out,
		mark:  mark,
		in:    in,
		lines: make(chan line),
	}
}

// PromptName asks until the answer is a valid identity.
func (that *Console) PromptName(ctx context.Context) (string, error) {
	that.println("Please input your username, no special characters.")

	for {
		answer, err := that.readLine(ctx)
		if err != nil {
			return "", err
		}

		if err = protocol.ValidateIdentity(answer); err == nil {
			return answer, nil
		}

		that.println("Invalid username. All characters must be alphanumeric. Try again.")
	}
}

// PromptLocalMove asks for an integer. Whether the cell is free is decided by the board.
func (that *Console) PromptLocalMove(ctx context.Context) (int, error) {
	for {
		that.printf("Enter your move (number from 1 - 9): ")

		answer, err := that.readLine(ctx)
		if err != nil {
			return 0, err
		}

		position, err := strconv.Atoi(answer)
		if err != nil {
			that.println("Invalid input. Please try again.")
			continue
		}

		return position, nil
	}
}

func (that *Console) PromptRematchDecision(ctx context.Context) (bool, error) {
	that.println("Do you want to play again? (y/n)")

	for {
		answer, err := that.readLine(ctx)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}

		that.println("Invalid input. Please enter y or n.")
	}
}

func (that *Console) WaitingForConnection() {
	that.println("Waiting for connection...")
}

func (that *Console) RoundStarted(int) {
	that.println("Moves are made with an integer from 1-9, following the format of the grid below.")
	that.printf("%s\n", renderGrid([9]string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}))
	that.println("Start Game.")
}

func (that *Console) BoardChanged(cells [9]entity.Mark) {
	var labels [9]string
	for i, cell := range cells {
		labels[i] = string(cell)
	}

	that.printf("\n%s\n", renderGrid(labels))
}

func (that *Console) MoveRejected(_ int, err error) {
	if errors.Is(err, apperror.ErrCellOccupied) {
		that.println("That tile has already been played. Please try again.")
		return
	}

	that.println("Invalid input. Please try again.")
}

func (that *Console) WaitingForOpponent(name string) {
	that.printf("%s's Turn...\n", name)
}

func (that *Console) RoundFinished(outcome entity.Outcome, _ entity.Stats) {
	switch {
	case outcome.Result == entity.ResultTied:
		that.println("Tie!")
	case outcome.Winner == that.mark:
		that.println("You won!")
	default:
		that.println("You lost...")
	}
}

// PrintStats writes the final summary of a session.
func (that *Console) PrintStats(name, lastMover string, stats entity.Stats) {
	that.printf("Player's user name: %s\n", name)
	that.printf("Last player to make a move: %s\n", lastMover)
	that.printf("Number of games played: %d\n", stats.GamesPlayed)
	that.printf("Number of wins: %d\n", stats.Wins)
	that.printf("Number of losses: %d\n", stats.Losses)
	that.printf("Number of ties: %d\n", stats.Ties)
}

// readLine waits for the next answer. A canceled ctx abandons the wait but
// not the pending read, which is handed to the next caller.
func (that *Console) readLine(ctx context.Context) (string, error) {
	that.startOnce.Do(func() {
		go that.scan()
	})

	select {
	case next, ok := <-that.lines:
		if !ok {
			return "", io.ErrUnexpectedEOF
		}

		if next.err != nil {
			return "", fmt.Errorf("failed to read answer: %w", next.err)
		}

		return strings.TrimSpace(next.text), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (that *Console) scan() {
	defer close(that.lines)

	scanner := bufio.NewScanner(that.in)
	for scanner.Scan() {
		that.lines <- line{text: scanner.Text()}
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}

	that.lines <- line{err: err}
}

func (that *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(that.out, format, args...)
}

func (that *Console) println(text string) {
	_, _ = fmt.Fprintln(that.out, text)
}

func renderGrid(labels [9]string) string {
	rows := make([]string, 0, 3)
	for row := 0; row < 3; row++ {
		cells := labels[row*3 : row*3+3]
		rows = append(rows, fmt.Sprintf("%s|%s|%s", center(cells[0]), center(cells[1]), center(cells[2])))
	}

	return strings.Join(rows, "\n"+strings.Repeat("-", 11)+"\n") + "\n"
}

// center pads label to a width of three.
func center(label string) string {
	switch len(label) {
	case 0:
		return "   "
	case 1:
		return " " + label + " "
	default:
		return label
	}
}
