package game

import (
	"context"
	"errors"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/KirkDiggler/jackpotdice/internal/repositories/state"
)

// operatorShareDivisor splits each payment: price/4 to the operator, the rest to the pool
const operatorShareDivisor = 4

// Pay takes the price to play from the player, a quarter to the operator and
// the remainder into the jackpot pool, and grants one credit
func (s *service) Pay(ctx context.Context, input *PayInput) (*PayOutput, error) {
	if input == nil || input.Player.IsZero() {
		return nil, ErrInvalidPlayer
	}

	now := s.clock.Now()
	output := &PayOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Player:  input.Player,
		Records: state.RecordLedger | state.RecordBalances,
		Fn: func(tx *state.Tx) error {
			ledger := tx.Ledger
			if ledger == nil {
				return ErrNotInitialized
			}

			session := tx.Session
			if session == nil {
				return ErrSessionNotFound
			}

			if session.Credit != 0 {
				return ErrAlreadyInGame
			}

			balance, err := tx.Balance(input.Player)
			if err != nil {
				return err
			}
			if balance < ledger.PriceToPlay {
				return ErrInsufficientFunds
			}

			operatorShare := ledger.PriceToPlay / operatorShareDivisor
			jackpotShare := ledger.PriceToPlay - operatorShare

			if operatorShare > 0 {
				err := s.transfer(tx, now, input.Player, ledger.Operator, operatorShare, models.TransferReasonOperatorShare)
				if err != nil {
					return err
				}
			}

			if jackpotShare > 0 {
				err := s.transfer(tx, now, input.Player, models.JackpotAddress, jackpotShare, models.TransferReasonJackpotShare)
				if err != nil {
					return err
				}
			}

			pool, err := tx.Balance(models.JackpotAddress)
			if err != nil {
				return err
			}

			ledger.CurrentJackpot = pool
			session.Credit = 1

			output.Session = copySession(session)
			output.OperatorShare = operatorShare
			output.JackpotShare = jackpotShare
			output.Jackpot = pool
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("player", input.Player.String()).
		Uint64("operator_share", output.OperatorShare).
		Uint64("jackpot_share", output.JackpotShare).
		Uint64("jackpot", output.Jackpot).
		Msg("payment received")

	return output, nil
}

// WithdrawJackpot moves the entire pool to the caller if they are the
// current winner
func (s *service) WithdrawJackpot(ctx context.Context, input *WithdrawJackpotInput) (*WithdrawJackpotOutput, error) {
	if input == nil || input.Caller.IsZero() {
		return nil, ErrNotWinner
	}

	now := s.clock.Now()
	output := &WithdrawJackpotOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Records: state.RecordLedger | state.RecordBalances,
		Fn: func(tx *state.Tx) error {
			ledger := tx.Ledger
			if ledger == nil {
				return ErrNotInitialized
			}

			if !ledger.HasWinner() || ledger.CurrentWinner != input.Caller {
				return ErrNotWinner
			}

			pool, err := tx.Balance(models.JackpotAddress)
			if err != nil {
				return err
			}
			if pool == 0 {
				return ErrNoJackpot
			}

			err = s.transfer(tx, now, models.JackpotAddress, input.Caller, pool, models.TransferReasonJackpotPayout)
			if err != nil {
				return err
			}

			ledger.CurrentJackpot = 0

			balance, err := tx.Balance(input.Caller)
			if err != nil {
				return err
			}

			output.Amount = pool
			output.Balance = balance
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("winner", input.Caller.String()).
		Uint64("amount", output.Amount).
		Msg("jackpot withdrawn")

	return output, nil
}

// Deposit credits an account with value from outside the game
func (s *service) Deposit(ctx context.Context, input *DepositInput) (*DepositOutput, error) {
	if input == nil || input.Account.IsZero() {
		return nil, ErrInvalidPlayer
	}
	if input.Amount == 0 {
		return nil, ErrInvalidAmount
	}

	now := s.clock.Now()
	output := &DepositOutput{}

	// The ledger mirrors the pool, so deposits into it also touch the ledger
	records := state.RecordBalances
	if input.Account == models.JackpotAddress {
		records |= state.RecordLedger
	}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Records: records,
		Fn: func(tx *state.Tx) error {
			err := s.transfer(tx, now, models.ZeroAddress, input.Account, input.Amount, models.TransferReasonDeposit)
			if err != nil {
				return err
			}

			balance, err := tx.Balance(input.Account)
			if err != nil {
				return err
			}

			if input.Account == models.JackpotAddress && tx.Ledger != nil {
				tx.Ledger.CurrentJackpot = balance
			}

			output.Balance = balance
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("account", input.Account.String()).
		Uint64("amount", input.Amount).
		Msg("deposit credited")

	return output, nil
}

// GetBalance returns an account's balance
func (s *service) GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error) {
	if input == nil || input.Account.IsZero() {
		return nil, ErrInvalidPlayer
	}

	output := &GetBalanceOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Records: state.RecordBalances,
		Fn: func(tx *state.Tx) error {
			balance, err := tx.Balance(input.Account)
			if err != nil {
				return err
			}

			output.Balance = balance
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (s *service) transfer(tx *state.Tx, now time.Time, from, to models.Address, amount uint64, reason models.TransferReason) error {
	err := tx.Transfer(&models.Transfer{
		ID:        s.uuidGenerator.NewUUID(),
		From:      from,
		To:        to,
		Amount:    amount,
		Reason:    reason,
		Timestamp: now,
	})
	if errors.Is(err, state.ErrInsufficientBalance) {
		return ErrInsufficientFunds
	}
	return err
}
