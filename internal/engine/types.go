// Package engine implements the settlement computation core: the early
// cash-out calculator, the transfer-minimizing settlement optimizer, and
// the settlement validator. Every function here is a pure computation
// over an immutable ledger snapshot supplied by the caller; the engine
// holds no state and performs no I/O. All amounts are integer cents.
package engine

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a session as seen by the engine.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionSettling  SessionStatus = "settling"
	SessionCompleted SessionStatus = "completed"
)

// PlayerPosition is one player's aggregated money position within a
// snapshot, derived from non-voided transactions only.
type PlayerPosition struct {
	PlayerID      uuid.UUID
	Name          string
	BuyInsCents   int64
	CashOutsCents int64
	Active        bool
}

// NetCents is the amount still owed to (positive) or by (negative) the
// player: total buy-ins minus total cash-outs.
func (p PlayerPosition) NetCents() int64 {
	return p.BuyInsCents - p.CashOutsCents
}

// Snapshot is an immutable projection of a session's ledger at a single
// point in time. The ledger store builds one inside a read transaction;
// the engine never reaches back into storage.
type Snapshot struct {
	SessionID uuid.UUID
	Status    SessionStatus
	Players   []PlayerPosition
	TakenAt   time.Time
}

// position returns the position for the given player, if present.
func (s Snapshot) position(playerID uuid.UUID) (PlayerPosition, bool) {
	for _, p := range s.Players {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return PlayerPosition{}, false
}

// potCents is the money still on the table: every cent bought in that
// has not yet been paid back out. Never negative.
func (s Snapshot) potCents() int64 {
	var pot int64
	for _, p := range s.Players {
		pot += p.BuyInsCents - p.CashOutsCents
	}
	if pot < 0 {
		return 0
	}
	return pot
}

// EarlyCashOutRequest asks for one player's fair exit value mid-session.
type EarlyCashOutRequest struct {
	SessionID   uuid.UUID
	PlayerID    uuid.UUID
	RequestedAt time.Time
}

// EarlyCashOutResult is the one-shot answer to an early cash-out request.
// ShortfallCents is nonzero when the remaining pot could not cover the
// player's full net balance and the amount was capped at their pro-rata
// share. The engine does not persist results.
type EarlyCashOutResult struct {
	PlayerID          uuid.UUID
	CashOutCents      int64
	ShortfallCents    int64
	RemainingPotCents int64
	ComputedAt        time.Time
}

// Payment is a single peer-to-peer transfer within a settlement.
// Amount is always strictly positive.
type Payment struct {
	FromPlayerID uuid.UUID
	ToPlayerID   uuid.UUID
	AmountCents  int64
}

// OptimizedSettlement is the minimal transfer set that zeroes every
// player's net balance. Payments are emitted in a deterministic order.
type OptimizedSettlement struct {
	SessionID       uuid.UUID
	Payments        []Payment
	TotalMovedCents int64
	ComputedAt      time.Time
}

// CheckResult reports one validator rule.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// SettlementValidation is the validator's advisory verdict. Callers
// decide policy; the delivery layer blocks invalid settlements.
type SettlementValidation struct {
	IsValid          bool
	Checks           []CheckResult
	DiscrepancyCents int64
}
