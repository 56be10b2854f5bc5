package state

import (
	"fmt"
	"math"

	"github.com/KirkDiggler/jackpotdice/internal/models"
)

// Tx is the view of the records one operation works on. Fields left nil were
// not found; Fn may set them to create the record.
type Tx struct {
	Ledger      *models.GlobalLedger
	Leaderboard *models.Leaderboard
	Session     *models.PlayerSession

	records   Record
	fetch     func(addr models.Address) (uint64, error)
	loaded    map[models.Address]uint64
	balances  map[models.Address]uint64
	transfers []*models.Transfer
}

// NewTxInput contains the records to seed a Tx with
type NewTxInput struct {
	Ledger      *models.GlobalLedger
	Leaderboard *models.Leaderboard
	Session     *models.PlayerSession

	// Balances of known accounts; any other account reads as empty
	Balances map[models.Address]uint64
}

// NewTx builds a Tx from records already in memory
func NewTx(input *NewTxInput) *Tx {
	known := make(map[models.Address]uint64, len(input.Balances))
	for addr, amount := range input.Balances {
		known[addr] = amount
	}

	return newTx(RecordAll, input.Ledger, input.Leaderboard, input.Session, func(addr models.Address) (uint64, error) {
		return known[addr], nil
	})
}

func newTx(records Record, ledger *models.GlobalLedger, leaderboard *models.Leaderboard, session *models.PlayerSession, fetch func(models.Address) (uint64, error)) *Tx {
	return &Tx{
		Ledger:      ledger,
		Leaderboard: leaderboard,
		Session:     session,
		records:     records,
		fetch:       fetch,
		loaded:      make(map[models.Address]uint64),
		balances:    make(map[models.Address]uint64),
	}
}

// Balance returns the balance of an account
func (tx *Tx) Balance(addr models.Address) (uint64, error) {
	if !tx.records.Has(RecordBalances) {
		return 0, fmt.Errorf("%w: balances", ErrRecordNotLoaded)
	}

	if amount, ok := tx.balances[addr]; ok {
		return amount, nil
	}

	amount, err := tx.fetch(addr)
	if err != nil {
		return 0, err
	}
	tx.loaded[addr] = amount
	tx.balances[addr] = amount

	return amount, nil
}

// Transfer moves t.Amount from t.From to t.To, all or nothing, and journals
// it. A zero From credits t.To from outside the system.
func (tx *Tx) Transfer(t *models.Transfer) error {
	if t == nil {
		return ErrNilTransfer
	}

	to, err := tx.Balance(t.To)
	if err != nil {
		return err
	}

	if !t.From.IsZero() {
		from, err := tx.Balance(t.From)
		if err != nil {
			return err
		}
		if from < t.Amount {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, t.From, from, t.Amount)
		}
		if t.From == t.To {
			tx.transfers = append(tx.transfers, t)
			return nil
		}
	}

	if to > math.MaxUint64-t.Amount {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, t.To)
	}

	if !t.From.IsZero() {
		tx.balances[t.From] -= t.Amount
	}
	tx.balances[t.To] = to + t.Amount
	tx.transfers = append(tx.transfers, t)

	return nil
}

// changedBalances returns the accounts whose balance differs from what was loaded
func (tx *Tx) changedBalances() map[models.Address]uint64 {
	out := make(map[models.Address]uint64)
	for addr, amount := range tx.balances {
		if tx.loaded[addr] != amount {
			out[addr] = amount
		}
	}
	return out
}

// Transfers returns the transfers made so far, in order
func (tx *Tx) Transfers() []*models.Transfer {
	return tx.transfers
}
