package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/jackpotdice/internal/services/game Service

import "context"

// Service defines the interface for game operations
type Service interface {
	// InitializeGame creates the shared ledger and leaderboard
	InitializeGame(ctx context.Context, input *InitializeGameInput) (*InitializeGameOutput, error)

	// CreateSession creates a player's session in the idle state
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// Pay buys one game, splitting the price between operator and jackpot
	Pay(ctx context.Context, input *PayInput) (*PayOutput, error)

	// RollDice rolls five dice for a paid player
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)

	// ScoreRoll scores the dice on the table against a category
	ScoreRoll(ctx context.Context, input *ScoreRollInput) (*ScoreRollOutput, error)

	// EndGame submits the final score and returns the session to idle
	EndGame(ctx context.Context, input *EndGameInput) (*EndGameOutput, error)

	// WithdrawJackpot pays the whole pool to the current winner
	WithdrawJackpot(ctx context.Context, input *WithdrawJackpotInput) (*WithdrawJackpotOutput, error)

	// AdvanceRound lets the operator close the current round early
	AdvanceRound(ctx context.Context, input *AdvanceRoundInput) (*AdvanceRoundOutput, error)

	// Deposit credits an account from outside the game
	Deposit(ctx context.Context, input *DepositInput) (*DepositOutput, error)

	// GetSession returns a player's session
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)

	// GetLedger returns the ledger and the pooled jackpot balance
	GetLedger(ctx context.Context, input *GetLedgerInput) (*GetLedgerOutput, error)

	// GetLeaderboard returns the all-time top scores
	GetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*GetLeaderboardOutput, error)

	// GetBalance returns an account's balance
	GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error)

	// ListTransfers returns the most recent value movements
	ListTransfers(ctx context.Context, input *ListTransfersInput) (*ListTransfersOutput, error)
}
