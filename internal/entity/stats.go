package entity

// Stats are the cumulative counters of a session, seen from the local player.
type Stats struct {
	GamesPlayed int `json:"games_played" redis:"games_played"`
	Wins        int `json:"wins"         redis:"wins"`
	Losses      int `json:"losses"       redis:"losses"`
	Ties        int `json:"ties"         redis:"ties"`
}

// Record counts a finished round. Continue outcomes are ignored.
func (that *Stats) Record(outcome Outcome, self Mark) {
	switch outcome.Result {
	case ResultWon:
		if outcome.Winner == self {
			that.Wins++
		} else {
			that.Losses++
		}
	case ResultTied:
		that.Ties++
	default:
		return
	}

	that.GamesPlayed++
}
