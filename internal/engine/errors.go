package engine

import "errors"

// Engine errors are deterministic functions of the input snapshot; there
// are no transient failures at this layer.
var (
	// ErrInvalidPlayerState is returned when the requested player is
	// missing from the snapshot or no longer active.
	ErrInvalidPlayerState = errors.New("player is not active in this session")

	// ErrSessionNotActive is returned when an early cash-out is requested
	// against a session that is already settling or completed.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrUnbalancedLedger is returned when the snapshot's net balances do
	// not sum to zero, meaning chips are still in play or the ledger is
	// corrupt. Settlement must not proceed.
	ErrUnbalancedLedger = errors.New("ledger balances do not sum to zero")
)
