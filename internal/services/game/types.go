package game

import (
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/common/clock"
	"github.com/KirkDiggler/jackpotdice/internal/common/uuid"
	"github.com/KirkDiggler/jackpotdice/internal/dice"
	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/KirkDiggler/jackpotdice/internal/repositories/state"
	"github.com/rs/zerolog"
)

// DefaultRollCooldown is the minimum gap between two rolls by one player
const DefaultRollCooldown = 10 * time.Second

// Config holds configuration for the game service
type Config struct {
	// RollCooldown is the wait between rolls; a roll is allowed once strictly
	// more than this many whole seconds have passed
	RollCooldown time.Duration

	// Repository dependencies
	Repository state.Repository

	// Service dependencies
	DiceRoller    dice.Roller
	Clock         clock.Clock
	UUIDGenerator uuid.UUID

	// Logger is optional
	Logger *zerolog.Logger
}

// InitializeGameInput contains parameters for setting up the game
type InitializeGameInput struct {
	// Operator receives a quarter of every payment
	Operator models.Address

	// PriceToPlay is the cost of one game
	PriceToPlay uint64

	// GamesTillJackpot is the round length in finished games; 0 disables rotation
	GamesTillJackpot uint64
}

// InitializeGameOutput contains the created ledger
type InitializeGameOutput struct {
	Ledger *models.GlobalLedger
}

// CreateSessionInput contains parameters for creating a session
type CreateSessionInput struct {
	Player models.Address

	// StartingBalance is deposited to the player together with the session
	StartingBalance uint64
}

// CreateSessionOutput contains the created session
type CreateSessionOutput struct {
	Session *models.PlayerSession

	// Balance is the player's balance after any starting deposit
	Balance uint64
}

// PayInput contains parameters for paying to play
type PayInput struct {
	Player models.Address
}

// PayOutput contains the result of a payment
type PayOutput struct {
	Session *models.PlayerSession

	// OperatorShare is what the operator received
	OperatorShare uint64

	// JackpotShare is what went into the pool
	JackpotShare uint64

	// Jackpot is the pool balance after the payment
	Jackpot uint64
}

// RollDiceInput contains parameters for rolling dice
type RollDiceInput struct {
	Player models.Address
}

// RollDiceOutput contains the result of rolling dice
type RollDiceOutput struct {
	Session *models.PlayerSession

	// Dice are the faces rolled
	Dice dice.Roll
}

// ScoreRollInput contains parameters for scoring a roll
type ScoreRollInput struct {
	Player models.Address

	// Category is the face to count, 1 through 6
	Category uint8
}

// ScoreRollOutput contains the result of scoring a roll
type ScoreRollOutput struct {
	Session *models.PlayerSession

	// Dice are the faces that were scored
	Dice dice.Roll

	// Points is what this roll scored
	Points uint64
}

// EndGameInput contains parameters for ending a game
type EndGameInput struct {
	Player models.Address
}

// EndGameOutput contains the result of ending a game
type EndGameOutput struct {
	// FinalScore is the score submitted to the leaderboard
	FinalScore uint64

	// NewHighScore is true when the player became the current winner
	NewHighScore bool

	// Rank is the zero-based leaderboard position, or -1 if the score did not place
	Rank int

	// RoundAdvanced is true when the previous round closed before this game was recorded
	RoundAdvanced bool

	Session     *models.PlayerSession
	Ledger      *models.GlobalLedger
	Leaderboard *models.Leaderboard
}

// WithdrawJackpotInput contains parameters for withdrawing the jackpot
type WithdrawJackpotInput struct {
	Caller models.Address
}

// WithdrawJackpotOutput contains the result of a withdrawal
type WithdrawJackpotOutput struct {
	// Amount is the whole pool that was paid out
	Amount uint64

	// Balance is the caller's balance afterwards
	Balance uint64
}

// AdvanceRoundInput contains parameters for closing a round
type AdvanceRoundInput struct {
	Caller models.Address
}

// AdvanceRoundOutput contains the ledger of the new round
type AdvanceRoundOutput struct {
	Ledger *models.GlobalLedger

	// RolledOver is the unclaimed pool carried into the new round
	RolledOver uint64
}

// DepositInput contains parameters for funding an account
type DepositInput struct {
	Account models.Address
	Amount  uint64
}

// DepositOutput contains the balance after a deposit
type DepositOutput struct {
	Balance uint64
}

// GetSessionInput contains parameters for reading a session
type GetSessionInput struct {
	Player models.Address
}

// GetSessionOutput contains a player's session
type GetSessionOutput struct {
	Session *models.PlayerSession

	// Dice are the unpacked faces; meaningful only in the rolled state
	Dice dice.Roll

	// NextRollAt is the first unix second a roll is allowed
	NextRollAt int64
}

// GetLedgerInput contains parameters for reading the ledger
type GetLedgerInput struct{}

// GetLedgerOutput contains the ledger and the pool
type GetLedgerOutput struct {
	Ledger *models.GlobalLedger

	// Jackpot is the pooled balance held in custody
	Jackpot uint64
}

// GetLeaderboardInput contains parameters for reading the leaderboard
type GetLeaderboardInput struct{}

// GetLeaderboardOutput contains the leaderboard
type GetLeaderboardOutput struct {
	Entries []models.LeaderboardEntry
}

// GetBalanceInput contains parameters for reading a balance
type GetBalanceInput struct {
	Account models.Address
}

// GetBalanceOutput contains a balance
type GetBalanceOutput struct {
	Balance uint64
}

// ListTransfersInput contains parameters for reading the transfer journal
type ListTransfersInput struct {
	Limit int64
}

// ListTransfersOutput contains journalled transfers, newest first
type ListTransfersOutput struct {
	Transfers []*models.Transfer
}
