package models

import "time"

// TransferReason describes why value moved between accounts
type TransferReason string

const (
	// TransferReasonOperatorShare is the operator cut of a payment
	TransferReasonOperatorShare TransferReason = "operator_share"

	// TransferReasonJackpotShare is the pooled cut of a payment
	TransferReasonJackpotShare TransferReason = "jackpot_share"

	// TransferReasonJackpotPayout is a winner withdrawing the pool
	TransferReasonJackpotPayout TransferReason = "jackpot_payout"

	// TransferReasonDeposit is value entering the system from outside
	TransferReasonDeposit TransferReason = "deposit"
)

// Transfer is one journalled movement of native currency
type Transfer struct {
	// ID is the unique identifier for the transfer
	ID string

	// From is the debited account; zero for deposits
	From Address

	// To is the credited account
	To Address

	// Amount moved
	Amount uint64

	// Reason for the movement
	Reason TransferReason

	// Timestamp is when the transfer was committed
	Timestamp time.Time
}
