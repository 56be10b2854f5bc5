package models

// SessionState is derived from a session's credit and roll flags
type SessionState string

const (
	// SessionStateIdle means the player has not paid
	SessionStateIdle SessionState = "idle"

	// SessionStatePaid means the player holds a credit and may roll
	SessionStatePaid SessionState = "paid"

	// SessionStateRolled means dice are on the table waiting to be scored
	SessionStateRolled SessionState = "rolled"
)

// PlayerSession is the per-player game state
type PlayerSession struct {
	// Owner is the player this session belongs to
	Owner Address

	// Credit is 1 while a paid game is in progress, otherwise 0
	Credit uint8

	// CanRoll is true when dice have been rolled and not yet scored.
	// The name follows the ledger record; it gates scoring, not rolling.
	CanRoll bool

	// UpperScore accumulates category scores for the current game
	UpperScore uint64

	// LowerScore is summed into the final score but has no categories yet
	LowerScore uint64

	// PackedDice holds five faces, three bits each
	PackedDice uint16

	// LastRollTime is the unix time of the previous roll
	LastRollTime int64
}

// NewPlayerSession returns the zeroed session owned by player
func NewPlayerSession(player Address) *PlayerSession {
	return &PlayerSession{Owner: player}
}

// State returns the state machine position of the session
func (s *PlayerSession) State() SessionState {
	switch {
	case s.Credit == 0:
		return SessionStateIdle
	case s.CanRoll:
		return SessionStateRolled
	default:
		return SessionStatePaid
	}
}

// FinalScore is the score submitted when the game ends
func (s *PlayerSession) FinalScore() uint64 {
	return s.UpperScore + s.LowerScore
}

// Reset returns the session to idle. LastRollTime is kept so the
// cooldown still applies across games.
func (s *PlayerSession) Reset() {
	s.Credit = 0
	s.CanRoll = false
	s.UpperScore = 0
	s.LowerScore = 0
	s.PackedDice = 0
}
