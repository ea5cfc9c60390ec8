package entity

type Result int

const (
	ResultContinue Result = iota
	ResultWon
	ResultTied
)

func (that Result) String() string {
	switch that {
	case ResultContinue:
		return "continue"
	case ResultWon:
		return "won"
	case ResultTied:
		return "tied"
	default:
		return "unknown"
	}
}

// Outcome is the evaluation of a board after a move. Winner is set only for ResultWon.
type Outcome struct {
	Result Result
	Winner Mark
}

func (that Outcome) IsFinished() bool {
	return that.Result != ResultContinue
}
