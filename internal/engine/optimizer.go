package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// party is one side of the debt netting: a player together with the
// unmatched magnitude of their balance, always held positive.
type party struct {
	playerID  uuid.UUID
	remaining int64
}

// sortByMagnitude orders parties by remaining amount descending, breaking
// ties on the lexicographically smaller player ID so repeated runs over
// the same snapshot emit identical payment sequences.
func sortByMagnitude(parties []party) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].remaining != parties[j].remaining {
			return parties[i].remaining > parties[j].remaining
		}
		return parties[i].playerID.String() < parties[j].playerID.String()
	})
}

// OptimizeSettlement nets the snapshot's balances into a minimal set of
// peer-to-peer payments. The largest outstanding credit is repeatedly
// matched against the largest outstanding debt, which bounds the result
// at len(players)-1 payments. Finding the true minimum is a set-partition
// problem and NP-hard, so the greedy match is used throughout.
//
// The snapshot must be fully cashed out: balances that do not sum to
// exactly zero are rejected with ErrUnbalancedLedger. A snapshot whose
// balances are all zero yields an empty payment list.
func OptimizeSettlement(snap Snapshot) (*OptimizedSettlement, error) {
	var creditors, debtors []party
	var sum int64
	for _, p := range snap.Players {
		net := p.NetCents()
		sum += net
		switch {
		case net > 0:
			creditors = append(creditors, party{playerID: p.PlayerID, remaining: net})
		case net < 0:
			debtors = append(debtors, party{playerID: p.PlayerID, remaining: -net})
		}
	}
	if sum != 0 {
		return nil, fmt.Errorf("balances sum to %d cents: %w", sum, ErrUnbalancedLedger)
	}

	settlement := &OptimizedSettlement{
		SessionID:  snap.SessionID,
		Payments:   []Payment{},
		ComputedAt: time.Now().UTC(),
	}
	if len(creditors) == 0 {
		return settlement, nil
	}

	// Remember who held the largest original credit; any terminal
	// remainder is absorbed into that player's payment so rounding can
	// never strand a residual balance.
	sortByMagnitude(creditors)
	largestCreditor := creditors[0].playerID

	for len(creditors) > 0 && len(debtors) > 0 {
		sortByMagnitude(creditors)
		sortByMagnitude(debtors)

		credit := &creditors[0]
		debt := &debtors[0]
		amount := credit.remaining
		if debt.remaining < amount {
			amount = debt.remaining
		}

		settlement.Payments = append(settlement.Payments, Payment{
			FromPlayerID: debt.playerID,
			ToPlayerID:   credit.playerID,
			AmountCents:  amount,
		})
		settlement.TotalMovedCents += amount
		credit.remaining -= amount
		debt.remaining -= amount

		if credit.remaining == 0 {
			creditors = creditors[1:]
		}
		if debt.remaining == 0 {
			debtors = debtors[1:]
		}
	}

	// With integer cents and a zero sum both sides drain together. The
	// guard keeps the conservation invariant if that ever stops holding.
	if residual := residualCents(creditors); residual != 0 {
		absorbed := false
		for i := range settlement.Payments {
			if settlement.Payments[i].ToPlayerID == largestCreditor {
				settlement.Payments[i].AmountCents += residual
				settlement.TotalMovedCents += residual
				absorbed = true
				break
			}
		}
		if !absorbed && len(debtors) > 0 {
			settlement.Payments = append(settlement.Payments, Payment{
				FromPlayerID: debtors[0].playerID,
				ToPlayerID:   largestCreditor,
				AmountCents:  residual,
			})
			settlement.TotalMovedCents += residual
		}
	}

	return settlement, nil
}

func residualCents(creditors []party) int64 {
	var residual int64
	for _, c := range creditors {
		residual += c.remaining
	}
	return residual
}
