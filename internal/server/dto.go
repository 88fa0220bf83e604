package server

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chipsplit/chipsplit/internal/engine"
	"github.com/chipsplit/chipsplit/pkg/money"
)

// Request bodies. Amounts arrive as decimal strings or numbers and are
// validated down to cent precision before reaching the store.

type createSessionRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type addPlayerRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type recordTransactionRequest struct {
	PlayerID string          `json:"player_id" binding:"required,uuid"`
	Type     string          `json:"type" binding:"required,oneof=buy_in cash_out"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

type voidTransactionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type earlyCashOutRequest struct {
	// Commit records the computed cash-out as a transaction and marks
	// the player inactive; the default is a dry-run projection.
	Commit bool `json:"commit"`
}

// Response bodies. Internal cents become display decimals here and only
// here.

type paymentResponse struct {
	FromPlayerID string          `json:"from_player_id"`
	ToPlayerID   string          `json:"to_player_id"`
	Amount       decimal.Decimal `json:"amount"`
}

type settlementResponse struct {
	SessionID        string            `json:"session_id"`
	Payments         []paymentResponse `json:"payments"`
	TotalAmountMoved decimal.Decimal   `json:"total_amount_moved"`
	ComputedAt       time.Time         `json:"computed_at"`
}

type checkResponse struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

type validationResponse struct {
	IsValid            bool            `json:"is_valid"`
	Checks             []checkResponse `json:"checks"`
	BalanceDiscrepancy decimal.Decimal `json:"balance_discrepancy"`
}

type settleResponse struct {
	Settlement settlementResponse `json:"settlement"`
	Validation validationResponse `json:"validation"`
}

type earlyCashOutResponse struct {
	PlayerID          string          `json:"player_id"`
	CashOutAmount     decimal.Decimal `json:"cash_out_amount"`
	Shortfall         decimal.Decimal `json:"shortfall"`
	RemainingPotShare decimal.Decimal `json:"remaining_pot_share"`
	ComputedAt        time.Time       `json:"computed_at"`
	Committed         bool            `json:"committed"`
}

func toSettlementResponse(s *engine.OptimizedSettlement) settlementResponse {
	payments := make([]paymentResponse, 0, len(s.Payments))
	for _, p := range s.Payments {
		payments = append(payments, paymentResponse{
			FromPlayerID: p.FromPlayerID.String(),
			ToPlayerID:   p.ToPlayerID.String(),
			Amount:       money.FromCents(p.AmountCents),
		})
	}
	return settlementResponse{
		SessionID:        s.SessionID.String(),
		Payments:         payments,
		TotalAmountMoved: money.FromCents(s.TotalMovedCents),
		ComputedAt:       s.ComputedAt,
	}
}

func toValidationResponse(v *engine.SettlementValidation) validationResponse {
	checks := make([]checkResponse, 0, len(v.Checks))
	for _, c := range v.Checks {
		checks = append(checks, checkResponse{Name: c.Name, Passed: c.Passed, Detail: c.Detail})
	}
	return validationResponse{
		IsValid:            v.IsValid,
		Checks:             checks,
		BalanceDiscrepancy: money.FromCents(v.DiscrepancyCents),
	}
}

func toEarlyCashOutResponse(r *engine.EarlyCashOutResult, committed bool) earlyCashOutResponse {
	return earlyCashOutResponse{
		PlayerID:          r.PlayerID.String(),
		CashOutAmount:     money.FromCents(r.CashOutCents),
		Shortfall:         money.FromCents(r.ShortfallCents),
		RemainingPotShare: money.FromCents(r.RemainingPotCents),
		ComputedAt:        r.ComputedAt,
		Committed:         committed,
	}
}
