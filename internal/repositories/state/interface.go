package state

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/jackpotdice/internal/repositories/state Repository

import (
	"context"
)

// Repository is the durable record store the game runs against. Every call to
// Execute is a single atomic step: either all of its writes commit or none do.
type Repository interface {
	// Execute loads the requested shared records and the player's session, runs
	// Fn against them with balances read on demand, and commits everything Fn
	// changed. Fn may run more than once if a concurrent writer gets in first;
	// Execute keeps retrying until it commits or ctx is done.
	Execute(ctx context.Context, input *ExecuteInput) error

	// ListTransfers returns the most recent journalled transfers, newest first
	ListTransfers(ctx context.Context, input *ListTransfersInput) (*ListTransfersOutput, error)
}
