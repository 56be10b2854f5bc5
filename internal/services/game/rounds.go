package game

import (
	"context"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/KirkDiggler/jackpotdice/internal/repositories/state"
)

// A round lasts GamesTillJackpot finished games. Once it has played out, the
// next EndGame closes it before recording its own score: the round counter
// moves on, the high score and winner reset, and whatever the previous
// winner left unclaimed in the pool carries into the new round.

// AdvanceRound closes the current round immediately. Only the operator may
// call it.
func (s *service) AdvanceRound(ctx context.Context, input *AdvanceRoundInput) (*AdvanceRoundOutput, error) {
	if input == nil || input.Caller.IsZero() {
		return nil, ErrNotOperator
	}

	now := s.clock.Now()
	output := &AdvanceRoundOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Records: state.RecordLedger | state.RecordBalances,
		Fn: func(tx *state.Tx) error {
			if tx.Ledger == nil {
				return ErrNotInitialized
			}

			if tx.Ledger.Operator != input.Caller {
				return ErrNotOperator
			}

			rolledOver, err := s.advanceRound(tx, now)
			if err != nil {
				return err
			}

			output.Ledger = copyLedger(tx.Ledger)
			output.RolledOver = rolledOver
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint64("round", output.Ledger.Round).
		Uint64("rolled_over", output.RolledOver).
		Msg("round advanced by operator")

	return output, nil
}

// advanceRound starts the next round on tx.Ledger and returns the pool
// carried over
func (s *service) advanceRound(tx *state.Tx, now time.Time) (uint64, error) {
	pool, err := tx.Balance(models.JackpotAddress)
	if err != nil {
		return 0, err
	}

	ledger := tx.Ledger
	ledger.Round++
	ledger.RoundStartTime = now.Unix()
	ledger.GamesPlayed = 0
	ledger.HighestScore = 0
	ledger.CurrentWinner = models.ZeroAddress
	ledger.CurrentJackpot = pool

	return pool, nil
}
