package game

import (
	"context"
	"errors"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/common/clock"
	"github.com/KirkDiggler/jackpotdice/internal/common/uuid"
	"github.com/KirkDiggler/jackpotdice/internal/dice"
	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/KirkDiggler/jackpotdice/internal/repositories/state"
	"github.com/KirkDiggler/jackpotdice/internal/scoring"
	"github.com/rs/zerolog"
)

// service implements the Service interface. It keeps no state of its own:
// every operation is one atomic Execute against the repository.
type service struct {
	repo          state.Repository
	diceRoller    dice.Roller
	clock         clock.Clock
	uuidGenerator uuid.UUID
	logger        zerolog.Logger
	cooldown      int64
}

// New creates a new game service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Repository == nil {
		return nil, ErrNilRepository
	}

	if cfg.DiceRoller == nil {
		return nil, ErrNilDiceRoller
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	cooldown := cfg.RollCooldown
	if cooldown <= 0 {
		cooldown = DefaultRollCooldown
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "game").Logger()
	}

	return &service{
		repo:          cfg.Repository,
		diceRoller:    cfg.DiceRoller,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
		logger:        logger,
		cooldown:      int64((cooldown + time.Second - 1) / time.Second),
	}, nil
}

// InitializeGame creates the shared ledger and an empty leaderboard
func (s *service) InitializeGame(ctx context.Context, input *InitializeGameInput) (*InitializeGameOutput, error) {
	if input == nil || input.Operator.IsZero() {
		return nil, ErrInvalidPlayer
	}

	now := s.clock.Now()
	output := &InitializeGameOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Records: state.RecordAll,
		Fn: func(tx *state.Tx) error {
			if tx.Ledger != nil {
				return ErrAlreadyInitialized
			}

			pool, err := tx.Balance(models.JackpotAddress)
			if err != nil {
				return err
			}

			tx.Ledger = &models.GlobalLedger{
				Operator:         input.Operator,
				PriceToPlay:      input.PriceToPlay,
				Round:            1,
				GamesTillJackpot: input.GamesTillJackpot,
				RoundStartTime:   now.Unix(),
				CurrentWinner:    models.ZeroAddress,
				CurrentJackpot:   pool,
			}
			if tx.Leaderboard == nil {
				tx.Leaderboard = models.NewLeaderboard()
			}

			ledger := *tx.Ledger
			output.Ledger = &ledger
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("operator", input.Operator.String()).
		Uint64("price_to_play", input.PriceToPlay).
		Uint64("games_till_jackpot", input.GamesTillJackpot).
		Msg("game initialized")

	return output, nil
}

// CreateSession creates a player's idle session, crediting input.StartingBalance
// in the same commit
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil || input.Player.IsZero() {
		return nil, ErrInvalidPlayer
	}

	now := s.clock.Now()
	output := &CreateSessionOutput{}

	var records state.Record
	if input.StartingBalance > 0 {
		records = state.RecordBalances
	}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Player:  input.Player,
		Records: records,
		Fn: func(tx *state.Tx) error {
			if tx.Session != nil {
				return ErrSessionExists
			}

			tx.Session = models.NewPlayerSession(input.Player)
			output.Session = copySession(tx.Session)

			if input.StartingBalance == 0 {
				return nil
			}

			err := s.transfer(tx, now, models.ZeroAddress, input.Player, input.StartingBalance, models.TransferReasonDeposit)
			if err != nil {
				return err
			}

			balance, err := tx.Balance(input.Player)
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

	s.logger.Debug().
		Str("player", input.Player.String()).
		Uint64("starting_balance", input.StartingBalance).
		Msg("session created")

	return output, nil
}

// RollDice rolls for a paid player whose dice are not on the table, at most
// once per cooldown
func (s *service) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil || input.Player.IsZero() {
		return nil, ErrInvalidPlayer
	}

	now := s.clock.Now().Unix()
	output := &RollDiceOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Player: input.Player,
		Fn: func(tx *state.Tx) error {
			session := tx.Session
			if session == nil {
				return ErrSessionNotFound
			}

			if session.Credit != 1 {
				return ErrNotPaid
			}

			if session.CanRoll {
				return ErrAlreadyRolled
			}

			if now <= session.LastRollTime+s.cooldown {
				return ErrCooldownActive
			}

			roll := s.diceRoller.Roll(input.Player, now)

			session.PackedDice = roll.Pack()
			session.CanRoll = true
			session.LastRollTime = now

			output.Session = copySession(session)
			output.Dice = roll
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("player", input.Player.String()).
		Uints8("dice", output.Dice[:]).
		Msg("dice rolled")

	return output, nil
}

// ScoreRoll adds the score of the dice on the table to the player's total
// and clears the table so they may roll again on the same credit
func (s *service) ScoreRoll(ctx context.Context, input *ScoreRollInput) (*ScoreRollOutput, error) {
	if input == nil || input.Player.IsZero() {
		return nil, ErrInvalidPlayer
	}

	output := &ScoreRollOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Player: input.Player,
		Fn: func(tx *state.Tx) error {
			session := tx.Session
			if session == nil {
				return ErrSessionNotFound
			}

			if !session.CanRoll {
				return ErrNotRolled
			}

			roll := dice.Unpack(session.PackedDice)
			points, err := scoring.Score(roll, input.Category)
			if err != nil {
				if errors.Is(err, scoring.ErrInvalidCategory) {
					return ErrInvalidCategory
				}
				return err
			}

			session.UpperScore += points
			session.CanRoll = false

			output.Session = copySession(session)
			output.Dice = roll
			output.Points = points
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("player", input.Player.String()).
		Uint8("category", input.Category).
		Uint64("points", output.Points).
		Msg("roll scored")

	return output, nil
}

// EndGame records the final score, crowns a new winner if it beats the
// round's best, submits it to the leaderboard and resets the session
func (s *service) EndGame(ctx context.Context, input *EndGameInput) (*EndGameOutput, error) {
	if input == nil || input.Player.IsZero() {
		return nil, ErrInvalidPlayer
	}

	now := s.clock.Now()
	var output *EndGameOutput

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Player:  input.Player,
		Records: state.RecordAll,
		Fn: func(tx *state.Tx) error {
			output = &EndGameOutput{Rank: -1}

			if tx.Ledger == nil || tx.Leaderboard == nil {
				return ErrNotInitialized
			}

			session := tx.Session
			if session == nil {
				return ErrSessionNotFound
			}

			if session.Credit != 1 {
				return ErrNotPaid
			}

			if tx.Ledger.RoundDue() {
				if _, err := s.advanceRound(tx, now); err != nil {
					return err
				}
				output.RoundAdvanced = true
			}

			final := session.FinalScore()
			if final > tx.Ledger.HighestScore {
				tx.Ledger.HighestScore = final
				tx.Ledger.CurrentWinner = input.Player
				output.NewHighScore = true
			}

			if rank, ok := tx.Leaderboard.Submit(input.Player, final); ok {
				output.Rank = rank
			}

			tx.Ledger.GamesPlayed++
			session.Reset()

			output.FinalScore = final
			output.Session = copySession(session)
			output.Ledger = copyLedger(tx.Ledger)
			output.Leaderboard = copyLeaderboard(tx.Leaderboard)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	if output.RoundAdvanced {
		s.logger.Info().
			Uint64("round", output.Ledger.Round).
			Uint64("rolled_over", output.Ledger.CurrentJackpot).
			Msg("round advanced")
	}

	event := s.logger.Debug()
	if output.NewHighScore {
		event = s.logger.Info()
	}
	event.
		Str("player", input.Player.String()).
		Uint64("final_score", output.FinalScore).
		Bool("new_high_score", output.NewHighScore).
		Int("rank", output.Rank).
		Msg("game ended")

	return output, nil
}

// GetSession returns a player's session
func (s *service) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if input == nil || input.Player.IsZero() {
		return nil, ErrInvalidPlayer
	}

	output := &GetSessionOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Player: input.Player,
		Fn: func(tx *state.Tx) error {
			if tx.Session == nil {
				return ErrSessionNotFound
			}

			output.Session = copySession(tx.Session)
			output.Dice = dice.Unpack(tx.Session.PackedDice)
			output.NextRollAt = tx.Session.LastRollTime + s.cooldown + 1
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// GetLedger returns the ledger and the pooled jackpot
func (s *service) GetLedger(ctx context.Context, input *GetLedgerInput) (*GetLedgerOutput, error) {
	output := &GetLedgerOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Records: state.RecordLedger | state.RecordBalances,
		Fn: func(tx *state.Tx) error {
			if tx.Ledger == nil {
				return ErrNotInitialized
			}

			pool, err := tx.Balance(models.JackpotAddress)
			if err != nil {
				return err
			}

			output.Ledger = copyLedger(tx.Ledger)
			output.Jackpot = pool
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// GetLeaderboard returns the all-time top scores
func (s *service) GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error) {
	output := &GetLeaderboardOutput{}

	err := s.repo.Execute(ctx, &state.ExecuteInput{
		Records: state.RecordLeaderboard,
		Fn: func(tx *state.Tx) error {
			if tx.Leaderboard == nil {
				return ErrNotInitialized
			}

			output.Entries = copyLeaderboard(tx.Leaderboard).Entries
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// ListTransfers returns the most recent value movements
func (s *service) ListTransfers(ctx context.Context, input *ListTransfersInput) (*ListTransfersOutput, error) {
	var limit int64
	if input != nil {
		limit = input.Limit
	}

	transfers, err := s.repo.ListTransfers(ctx, &state.ListTransfersInput{
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	return &ListTransfersOutput{
		Transfers: transfers.Transfers,
	}, nil
}

func copySession(session *models.PlayerSession) *models.PlayerSession {
	c := *session
	return &c
}

func copyLedger(ledger *models.GlobalLedger) *models.GlobalLedger {
	c := *ledger
	return &c
}

func copyLeaderboard(leaderboard *models.Leaderboard) *models.Leaderboard {
	entries := make([]models.LeaderboardEntry, len(leaderboard.Entries))
	copy(entries, leaderboard.Entries)
	return &models.Leaderboard{Entries: entries}
}
