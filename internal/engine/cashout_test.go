package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cashOutRequest(playerID uuid.UUID) EarlyCashOutRequest {
	return EarlyCashOutRequest{
		SessionID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		PlayerID:    playerID,
		RequestedAt: time.Now().UTC(),
	}
}

func TestCalculateEarlyCashOut(t *testing.T) {
	t.Run("FullBalanceWhenPotCovers", func(t *testing.T) {
		snap := Snapshot{
			Status: SessionActive,
			Players: []PlayerPosition{
				{PlayerID: playerA, BuyInsCents: 10000, Active: true},
				{PlayerID: playerB, BuyInsCents: 10000, Active: true},
			},
		}

		result, err := CalculateEarlyCashOut(snap, cashOutRequest(playerA))
		require.NoError(t, err)
		assert.Equal(t, int64(10000), result.CashOutCents)
		assert.Equal(t, int64(0), result.ShortfallCents)
		assert.Equal(t, int64(10000), result.RemainingPotCents)
	})

	t.Run("CappedAtRemainingPot", func(t *testing.T) {
		// A is owed 200.00 but prior cash-outs left only 150.00 on the
		// table: A collects 150.00 and a 50.00 shortfall is reported.
		snap := Snapshot{
			Status: SessionActive,
			Players: []PlayerPosition{
				{PlayerID: playerA, BuyInsCents: 20000, Active: true},
				{PlayerID: playerB, BuyInsCents: 10000, CashOutsCents: 15000, Active: true},
			},
		}

		result, err := CalculateEarlyCashOut(snap, cashOutRequest(playerA))
		require.NoError(t, err)
		assert.Equal(t, int64(15000), result.CashOutCents)
		assert.Equal(t, int64(5000), result.ShortfallCents)
		assert.Equal(t, int64(0), result.RemainingPotCents)
	})

	t.Run("ProRataShareAmongCreditors", func(t *testing.T) {
		// Pot of 60.00 against 120.00 of credit split 2:1 between A and B:
		// A's collectible share is 40.00.
		snap := Snapshot{
			Status: SessionActive,
			Players: []PlayerPosition{
				{PlayerID: playerA, BuyInsCents: 8000, Active: true},
				{PlayerID: playerB, BuyInsCents: 4000, Active: true},
				{PlayerID: playerC, BuyInsCents: 3000, CashOutsCents: 9000, Active: true},
			},
		}

		result, err := CalculateEarlyCashOut(snap, cashOutRequest(playerA))
		require.NoError(t, err)
		assert.Equal(t, int64(4000), result.CashOutCents)
		assert.Equal(t, int64(4000), result.ShortfallCents)
		assert.Equal(t, int64(2000), result.RemainingPotCents)
	})

	t.Run("ZeroForLosingPlayer", func(t *testing.T) {
		snap := Snapshot{
			Status: SessionActive,
			Players: []PlayerPosition{
				{PlayerID: playerA, BuyInsCents: 5000, CashOutsCents: 9000, Active: true},
				{PlayerID: playerB, BuyInsCents: 10000, Active: true},
			},
		}

		result, err := CalculateEarlyCashOut(snap, cashOutRequest(playerA))
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.CashOutCents)
		assert.Equal(t, int64(0), result.ShortfallCents)
	})

	t.Run("ReadOnlyProjection", func(t *testing.T) {
		snap := Snapshot{
			Status: SessionActive,
			Players: []PlayerPosition{
				{PlayerID: playerA, BuyInsCents: 10000, Active: true},
				{PlayerID: playerB, BuyInsCents: 10000, Active: true},
			},
		}

		first, err := CalculateEarlyCashOut(snap, cashOutRequest(playerA))
		require.NoError(t, err)
		second, err := CalculateEarlyCashOut(snap, cashOutRequest(playerA))
		require.NoError(t, err)
		assert.Equal(t, first.CashOutCents, second.CashOutCents)
		assert.Equal(t, first.RemainingPotCents, second.RemainingPotCents)
	})

	t.Run("InactivePlayerRejected", func(t *testing.T) {
		snap := Snapshot{
			Status: SessionActive,
			Players: []PlayerPosition{
				{PlayerID: playerA, BuyInsCents: 10000, Active: false},
			},
		}

		_, err := CalculateEarlyCashOut(snap, cashOutRequest(playerA))
		assert.ErrorIs(t, err, ErrInvalidPlayerState)
	})

	t.Run("UnknownPlayerRejected", func(t *testing.T) {
		snap := Snapshot{
			Status: SessionActive,
			Players: []PlayerPosition{
				{PlayerID: playerA, BuyInsCents: 10000, Active: true},
			},
		}

		_, err := CalculateEarlyCashOut(snap, cashOutRequest(playerB))
		assert.ErrorIs(t, err, ErrInvalidPlayerState)
	})

	t.Run("CompletedSessionRejected", func(t *testing.T) {
		snap := Snapshot{
			Status: SessionCompleted,
			Players: []PlayerPosition{
				{PlayerID: playerA, BuyInsCents: 10000, Active: true},
			},
		}

		_, err := CalculateEarlyCashOut(snap, cashOutRequest(playerA))
		assert.ErrorIs(t, err, ErrSessionNotActive)
	})
}
