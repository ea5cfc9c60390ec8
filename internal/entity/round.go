package entity

import "time"

// Round is one finished game of a session, kept in the round history.
type Round struct {
	Number     int       `json:"number"`
	Result     string    `json:"result"`
	Winner     Mark      `json:"winner,omitempty"`
	Self       Mark      `json:"self"`
	Opponent   string    `json:"opponent"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewRound(number int, outcome Outcome, self Mark, opponent string, finishedAt time.Time) Round {
	return Round{
		Number:     number,
		Result:     outcome.Result.String(),
		Winner:     outcome.Winner,
		Self:       self,
		Opponent:   opponent,
		FinishedAt: finishedAt.UTC(),
	}
}
