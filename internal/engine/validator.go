package engine

import (
	"fmt"

	"github.com/chipsplit/chipsplit/pkg/money"
	"github.com/google/uuid"
)

// Validator check names, stable for audit logs.
const (
	CheckConservation   = "conservation"
	CheckWellFormedness = "well_formedness"
	CheckTotalAmount    = "total_amount_identity"
)

// ValidateSettlement replays a settlement against the snapshot it was
// computed from and reports whether it is mathematically sound. The
// verdict is advisory and the settlement is never mutated; callers are
// expected to block display and export when IsValid is false.
//
// Validation is a pure function of its inputs, so validating the same
// settlement twice yields identical results.
func ValidateSettlement(snap Snapshot, settlement *OptimizedSettlement) *SettlementValidation {
	validation := &SettlementValidation{IsValid: true}

	conservation := checkConservation(snap, settlement)
	validation.DiscrepancyCents = conservation.discrepancy
	validation.Checks = append(validation.Checks, conservation.result)
	validation.Checks = append(validation.Checks, checkWellFormedness(settlement))
	validation.Checks = append(validation.Checks, checkTotalAmount(snap, settlement))

	for _, c := range validation.Checks {
		if !c.Passed {
			validation.IsValid = false
		}
	}
	return validation
}

type conservationOutcome struct {
	result      CheckResult
	discrepancy int64
}

// checkConservation replays every payment against the original balances
// and confirms each player lands on exactly zero.
func checkConservation(snap Snapshot, settlement *OptimizedSettlement) conservationOutcome {
	balances := make(map[uuid.UUID]int64, len(snap.Players))
	for _, p := range snap.Players {
		balances[p.PlayerID] = p.NetCents()
	}

	for i, payment := range settlement.Payments {
		if _, ok := balances[payment.FromPlayerID]; !ok {
			return conservationOutcome{result: CheckResult{
				Name:   CheckConservation,
				Detail: fmt.Sprintf("payment %d debits unknown player %s", i, payment.FromPlayerID),
			}}
		}
		if _, ok := balances[payment.ToPlayerID]; !ok {
			return conservationOutcome{result: CheckResult{
				Name:   CheckConservation,
				Detail: fmt.Sprintf("payment %d credits unknown player %s", i, payment.ToPlayerID),
			}}
		}
		// A debtor paying moves their balance up toward zero; a creditor
		// receiving moves theirs down toward zero.
		balances[payment.FromPlayerID] += payment.AmountCents
		balances[payment.ToPlayerID] -= payment.AmountCents
	}

	var discrepancy int64
	unsettled := 0
	for _, remaining := range balances {
		discrepancy += remaining
		if remaining != 0 {
			unsettled++
		}
	}
	if unsettled > 0 {
		return conservationOutcome{
			result: CheckResult{
				Name: CheckConservation,
				Detail: fmt.Sprintf("%d player(s) not settled to zero, net discrepancy %s",
					unsettled, money.FromCents(discrepancy).StringFixed(2)),
			},
			discrepancy: discrepancy,
		}
	}
	return conservationOutcome{result: CheckResult{
		Name:   CheckConservation,
		Passed: true,
		Detail: "all balances replay to zero",
	}}
}

// checkWellFormedness rejects non-positive amounts and self-payments.
func checkWellFormedness(settlement *OptimizedSettlement) CheckResult {
	for i, payment := range settlement.Payments {
		if payment.AmountCents <= 0 {
			return CheckResult{
				Name:   CheckWellFormedness,
				Detail: fmt.Sprintf("payment %d has non-positive amount %d cents", i, payment.AmountCents),
			}
		}
		if payment.FromPlayerID == payment.ToPlayerID {
			return CheckResult{
				Name:   CheckWellFormedness,
				Detail: fmt.Sprintf("payment %d pays player %s to themselves", i, payment.FromPlayerID),
			}
		}
	}
	return CheckResult{
		Name:   CheckWellFormedness,
		Passed: true,
		Detail: fmt.Sprintf("%d payment(s) well formed", len(settlement.Payments)),
	}
}

// checkTotalAmount confirms the money moved equals the total credit side
// of the snapshot, catching double-counted or lost payments.
func checkTotalAmount(snap Snapshot, settlement *OptimizedSettlement) CheckResult {
	var totalCredit, totalPaid int64
	for _, p := range snap.Players {
		if net := p.NetCents(); net > 0 {
			totalCredit += net
		}
	}
	for _, payment := range settlement.Payments {
		totalPaid += payment.AmountCents
	}

	if totalPaid != totalCredit {
		return CheckResult{
			Name: CheckTotalAmount,
			Detail: fmt.Sprintf("payments move %s but ledger credit totals %s",
				money.FromCents(totalPaid).StringFixed(2), money.FromCents(totalCredit).StringFixed(2)),
		}
	}
	if settlement.TotalMovedCents != totalPaid {
		return CheckResult{
			Name: CheckTotalAmount,
			Detail: fmt.Sprintf("recorded total %d cents does not match payment sum %d cents",
				settlement.TotalMovedCents, totalPaid),
		}
	}
	return CheckResult{
		Name:   CheckTotalAmount,
		Passed: true,
		Detail: fmt.Sprintf("total moved %s matches ledger credit", money.FromCents(totalPaid).StringFixed(2)),
	}
}
