package engine

import (
	"fmt"
	"time"
)

// CalculateEarlyCashOut computes the fair exit value for a single player
// without closing the table. The amount equals the player's current net
// balance when the remaining pot covers it; otherwise it is capped at the
// player's pro-rata share of the pot and the shortfall is reported rather
// than treated as a failure. The snapshot is not mutated, so the same
// snapshot can be queried repeatedly for hypothetical exits.
func CalculateEarlyCashOut(snap Snapshot, req EarlyCashOutRequest) (*EarlyCashOutResult, error) {
	if snap.Status != SessionActive {
		return nil, fmt.Errorf("session %s has status %q: %w", snap.SessionID, snap.Status, ErrSessionNotActive)
	}

	pos, ok := snap.position(req.PlayerID)
	if !ok {
		return nil, fmt.Errorf("player %s: %w", req.PlayerID, ErrInvalidPlayerState)
	}
	if !pos.Active {
		return nil, fmt.Errorf("player %s already left: %w", req.PlayerID, ErrInvalidPlayerState)
	}

	net := pos.NetCents()
	pot := snap.potCents()

	result := &EarlyCashOutResult{
		PlayerID:   req.PlayerID,
		ComputedAt: time.Now().UTC(),
	}

	// A player at or below zero walks away without taking money off the
	// table; what they owe is resolved at final settlement.
	if net <= 0 {
		result.RemainingPotCents = pot
		return result, nil
	}

	if net <= pot {
		result.CashOutCents = net
		result.RemainingPotCents = pot - net
		return result, nil
	}

	// The pot cannot cover the full balance. Cap at the player's pro-rata
	// share of what is collectible, measured against all positive balances.
	var totalCredit int64
	for _, p := range snap.Players {
		if n := p.NetCents(); n > 0 {
			totalCredit += n
		}
	}
	share := pot
	if totalCredit > 0 {
		share = pot * net / totalCredit
	}
	if share > net {
		share = net
	}

	result.CashOutCents = share
	result.ShortfallCents = net - share
	result.RemainingPotCents = pot - share
	return result, nil
}
