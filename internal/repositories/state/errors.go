package state

import "errors"

var (
	// ErrInsufficientBalance is returned when a transfer would overdraw an account
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBalanceOverflow is returned when a credit would overflow an account
	ErrBalanceOverflow = errors.New("balance overflow")

	// ErrNilTransfer is returned when Transfer is called without a transfer
	ErrNilTransfer = errors.New("transfer cannot be nil")

	// ErrSessionOwner is returned when Fn stores a session for another player
	ErrSessionOwner = errors.New("session owner does not match player")

	// ErrConflict is returned when an operation kept losing to concurrent writers
	ErrConflict = errors.New("too many concurrent updates")

	// ErrRecordNotLoaded is returned when Fn uses a record outside ExecuteInput.Records
	ErrRecordNotLoaded = errors.New("record not loaded")
)
