package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixed IDs with a known lexicographic order for tie-break assertions.
var (
	playerA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	playerB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	playerC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	playerD = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
)

// snapshotWithNets builds a snapshot whose players carry the given net
// balances in cents. Positive nets become buy-ins, negative nets become
// cash-outs, which is all the engine looks at.
func snapshotWithNets(nets map[uuid.UUID]int64) Snapshot {
	snap := Snapshot{
		SessionID: uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Status:    SessionSettling,
		TakenAt:   time.Now().UTC(),
	}
	// Deterministic player order for reproducible tests.
	for _, id := range []uuid.UUID{playerA, playerB, playerC, playerD} {
		net, ok := nets[id]
		if !ok {
			continue
		}
		pos := PlayerPosition{PlayerID: id, Active: true}
		if net >= 0 {
			pos.BuyInsCents = net
		} else {
			pos.CashOutsCents = -net
		}
		snap.Players = append(snap.Players, pos)
	}
	return snap
}

func TestOptimizeSettlement(t *testing.T) {
	t.Run("TwoPlayerSettlement", func(t *testing.T) {
		snap := snapshotWithNets(map[uuid.UUID]int64{
			playerA: 5000,
			playerB: -5000,
		})

		settlement, err := OptimizeSettlement(snap)
		require.NoError(t, err)
		require.Len(t, settlement.Payments, 1)
		assert.Equal(t, playerB, settlement.Payments[0].FromPlayerID)
		assert.Equal(t, playerA, settlement.Payments[0].ToPlayerID)
		assert.Equal(t, int64(5000), settlement.Payments[0].AmountCents)
		assert.Equal(t, int64(5000), settlement.TotalMovedCents)
	})

	t.Run("DeterministicTieBreak", func(t *testing.T) {
		// A and B hold equal credits; A's ID sorts first, so C pays A first.
		snap := snapshotWithNets(map[uuid.UUID]int64{
			playerA: 5000,
			playerB: 5000,
			playerC: -10000,
		})

		for i := 0; i < 5; i++ {
			settlement, err := OptimizeSettlement(snap)
			require.NoError(t, err)
			require.Len(t, settlement.Payments, 2)
			assert.Equal(t, playerC, settlement.Payments[0].FromPlayerID)
			assert.Equal(t, playerA, settlement.Payments[0].ToPlayerID)
			assert.Equal(t, int64(5000), settlement.Payments[0].AmountCents)
			assert.Equal(t, playerC, settlement.Payments[1].FromPlayerID)
			assert.Equal(t, playerB, settlement.Payments[1].ToPlayerID)
			assert.Equal(t, int64(5000), settlement.Payments[1].AmountCents)
		}
	})

	t.Run("RoundingClosure", func(t *testing.T) {
		snap := snapshotWithNets(map[uuid.UUID]int64{
			playerA: 1,
			playerB: 2,
			playerC: -3,
		})

		settlement, err := OptimizeSettlement(snap)
		require.NoError(t, err)
		assert.Equal(t, int64(3), settlement.TotalMovedCents)

		var paid int64
		for _, p := range settlement.Payments {
			paid += p.AmountCents
		}
		assert.Equal(t, int64(3), paid, "no residual cent may be stranded")
	})

	t.Run("PaymentBound", func(t *testing.T) {
		snap := snapshotWithNets(map[uuid.UUID]int64{
			playerA: 7351,
			playerB: 1249,
			playerC: -2600,
			playerD: -6000,
		})

		settlement, err := OptimizeSettlement(snap)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(settlement.Payments), len(snap.Players)-1)
	})

	t.Run("UnbalancedLedgerRejected", func(t *testing.T) {
		snap := snapshotWithNets(map[uuid.UUID]int64{
			playerA: 10000,
			playerB: -5000,
		})

		settlement, err := OptimizeSettlement(snap)
		assert.Nil(t, settlement)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnbalancedLedger)
	})

	t.Run("AllZeroBalancesYieldEmptySettlement", func(t *testing.T) {
		snap := snapshotWithNets(map[uuid.UUID]int64{
			playerA: 0,
			playerB: 0,
		})

		settlement, err := OptimizeSettlement(snap)
		require.NoError(t, err)
		assert.Empty(t, settlement.Payments)
		assert.Equal(t, int64(0), settlement.TotalMovedCents)

		validation := ValidateSettlement(snap, settlement)
		assert.True(t, validation.IsValid)
	})

	t.Run("EmptySession", func(t *testing.T) {
		snap := snapshotWithNets(map[uuid.UUID]int64{})

		settlement, err := OptimizeSettlement(snap)
		require.NoError(t, err)
		assert.Empty(t, settlement.Payments)
	})

	t.Run("LargestMatchedAgainstLargest", func(t *testing.T) {
		snap := snapshotWithNets(map[uuid.UUID]int64{
			playerA: 9000,
			playerB: 1000,
			playerC: -7000,
			playerD: -3000,
		})

		settlement, err := OptimizeSettlement(snap)
		require.NoError(t, err)
		require.NotEmpty(t, settlement.Payments)

		first := settlement.Payments[0]
		assert.Equal(t, playerC, first.FromPlayerID, "largest debtor pays first")
		assert.Equal(t, playerA, first.ToPlayerID, "largest creditor is paid first")
		assert.Equal(t, int64(7000), first.AmountCents)
	})
}

// TestConservationInvariant drives randomized-ish balance sets through the
// optimizer and confirms the validator always signs off with zero
// discrepancy.
func TestConservationInvariant(t *testing.T) {
	cases := []map[uuid.UUID]int64{
		{playerA: 5000, playerB: -5000},
		{playerA: 5000, playerB: 5000, playerC: -10000},
		{playerA: 1, playerB: 2, playerC: -3},
		{playerA: 123456, playerB: -99999, playerC: -23457},
		{playerA: 37, playerB: 4163, playerC: -4100, playerD: -100},
	}

	for _, nets := range cases {
		snap := snapshotWithNets(nets)
		settlement, err := OptimizeSettlement(snap)
		require.NoError(t, err)

		validation := ValidateSettlement(snap, settlement)
		assert.True(t, validation.IsValid, "checks: %+v", validation.Checks)
		assert.Equal(t, int64(0), validation.DiscrepancyCents)
	}
}
