package models

// GlobalLedger is the single shared record tracking configuration,
// the current round and the best score so far
type GlobalLedger struct {
	// Operator receives the operator share of every payment
	Operator Address

	// PriceToPlay is the cost of one paid session
	PriceToPlay uint64

	// Round is the current round number, starting at 1
	Round uint64

	// GamesTillJackpot is how many finished games make up a round; 0 disables rotation
	GamesTillJackpot uint64

	// GamesPlayed counts games ended in the current round
	GamesPlayed uint64

	// RoundStartTime is the unix time the current round began
	RoundStartTime int64

	// HighestScore never decreases within a round
	HighestScore uint64

	// CurrentWinner is the player who most recently set HighestScore
	CurrentWinner Address

	// CurrentJackpot mirrors the pooled jackpot balance
	CurrentJackpot uint64
}

// HasWinner reports whether any player has set a high score this round
func (l *GlobalLedger) HasWinner() bool {
	return !l.CurrentWinner.IsZero()
}

// RoundDue reports whether the round has played out and should rotate
func (l *GlobalLedger) RoundDue() bool {
	return l.GamesTillJackpot > 0 && l.GamesPlayed >= l.GamesTillJackpot
}
