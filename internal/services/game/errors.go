package game

import "errors"

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	// Caller invoked an operation out of turn
	ErrAlreadyInGame  GameError = "already in game"
	ErrNotPaid        GameError = "player has not paid"
	ErrAlreadyRolled  GameError = "dice already rolled"
	ErrNotRolled      GameError = "player has not rolled"
	ErrCooldownActive GameError = "roll cooldown active"
	ErrNotWinner      GameError = "not the winner"
	ErrNotOperator    GameError = "not the operator"

	// Balance does not cover the operation
	ErrInsufficientFunds GameError = "insufficient funds"
	ErrNoJackpot         GameError = "no jackpot to withdraw"

	// Malformed arguments
	ErrInvalidCategory GameError = "invalid scoring category"
	ErrInvalidPlayer   GameError = "player address cannot be zero"
	ErrInvalidAmount   GameError = "amount must be greater than zero"

	// Records
	ErrNotInitialized     GameError = "game not initialized"
	ErrAlreadyInitialized GameError = "game already initialized"
	ErrSessionNotFound    GameError = "session not found"
	ErrSessionExists      GameError = "session already exists"

	// Construction
	ErrNilConfig        GameError = "config cannot be nil"
	ErrNilRepository    GameError = "state repository cannot be nil"
	ErrNilDiceRoller    GameError = "dice roller cannot be nil"
	ErrNilClock         GameError = "clock cannot be nil"
	ErrNilUUIDGenerator GameError = "UUID generator cannot be nil"
)

// IsPrecondition reports whether err means the operation was called out of
// turn; the caller should re-read state and pick a valid operation
func IsPrecondition(err error) bool {
	return isOneOf(err, ErrAlreadyInGame, ErrNotPaid, ErrAlreadyRolled, ErrNotRolled,
		ErrCooldownActive, ErrNotWinner, ErrNotOperator, ErrAlreadyInitialized, ErrSessionExists)
}

// IsResource reports whether err means a balance was too low; retrying only
// helps once the balance changes
func IsResource(err error) bool {
	return isOneOf(err, ErrInsufficientFunds, ErrNoJackpot)
}

// IsInput reports whether err means an argument was malformed
func IsInput(err error) bool {
	return isOneOf(err, ErrInvalidCategory, ErrInvalidPlayer, ErrInvalidAmount)
}

// IsNotFound reports whether err means a record does not exist yet
func IsNotFound(err error) bool {
	return isOneOf(err, ErrNotInitialized, ErrSessionNotFound)
}

func isOneOf(err error, targets ...GameError) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
