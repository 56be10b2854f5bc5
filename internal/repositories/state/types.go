package state

import "github.com/KirkDiggler/jackpotdice/internal/models"

// Record selects a shared record an operation loads and watches
type Record uint8

const (
	// RecordLedger is the global ledger
	RecordLedger Record = 1 << iota

	// RecordLeaderboard is the all-time leaderboard
	RecordLeaderboard

	// RecordBalances is every account balance, including the jackpot pool
	RecordBalances

	// RecordAll is every shared record
	RecordAll = RecordLedger | RecordLeaderboard | RecordBalances
)

// Has reports whether r includes other
func (r Record) Has(other Record) bool {
	return r&other == other
}

// ExecuteInput contains parameters for an atomic operation
type ExecuteInput struct {
	// Player whose session is loaded; the zero address loads no session
	Player models.Address

	// Records are the shared records Fn works on. Only these are watched, so
	// an operation touching just its own session never races other players.
	Records Record

	// Fn applies the operation. Returning an error discards every change.
	Fn func(tx *Tx) error
}

// ListTransfersInput contains parameters for reading the transfer journal
type ListTransfersInput struct {
	// Limit caps the number of transfers returned; 0 means 20
	Limit int64
}

// ListTransfersOutput contains the most recent transfers
type ListTransfersOutput struct {
	Transfers []*models.Transfer
}
