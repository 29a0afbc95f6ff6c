package calculator

import (
	"errors"
	"math"

	"github.com/tallysplit/tally/internal/models"
)

// Epsilon is the amount below which a balance or transaction is treated as
// settled. Amounts within Epsilon of zero never appear in output.
const Epsilon = 0.01

// Contribution is a directed debt flow: Debtor owes Creditor Amount.
type Contribution struct {
	Debtor   string
	Creditor string
	Amount   float64
}

// AggregateLedger converts a group's non-deleted expenses and settlements
// into directed debt contributions, grouped by currency. Currencies never
// mix: each currency code gets its own contribution list.
//
// For an expense, every split line whose user is not the payer contributes
// (user, payer, share) — the payer's own share is never recorded as debt.
// A settlement is modeled as a reverse flow (payee, payer, amount) that
// cancels existing debt from payer to payee.
//
// Malformed records are excluded and reported through the joined error
// return; aggregation continues for the rest of the ledger.
func AggregateLedger(expenses []*models.ExpenseRecord, settlements []*models.SettlementRecord) (map[string][]Contribution, error) {
	contribs := make(map[string][]Contribution)
	var errs []error

	for _, exp := range expenses {
		if exp.Deleted.IsDeleted() {
			continue
		}
		if exp.Currency == "" {
			errs = append(errs, &ComputationError{RecordID: exp.ID, Reason: "missing currency"})
			continue
		}
		if exp.PaidBy == "" {
			errs = append(errs, &ComputationError{RecordID: exp.ID, Reason: "missing payer"})
			continue
		}

		sum := 0.0
		for _, line := range exp.Splits {
			sum += line.Amount
		}
		if math.Abs(sum-exp.Amount) > Epsilon {
			errs = append(errs, &ValidationError{ExpenseID: exp.ID, Expected: exp.Amount, Actual: sum})
			continue
		}

		for _, line := range exp.Splits {
			if line.UserID == exp.PaidBy {
				continue
			}
			contribs[exp.Currency] = append(contribs[exp.Currency], Contribution{
				Debtor:   line.UserID,
				Creditor: exp.PaidBy,
				Amount:   line.Amount,
			})
		}
	}

	for _, stl := range settlements {
		if stl.Deleted.IsDeleted() {
			continue
		}
		if stl.Currency == "" {
			errs = append(errs, &ComputationError{RecordID: stl.ID, Reason: "missing currency"})
			continue
		}
		if stl.PayerID == "" || stl.PayeeID == "" {
			errs = append(errs, &ComputationError{RecordID: stl.ID, Reason: "missing payer or payee"})
			continue
		}
		if stl.PayerID == stl.PayeeID {
			continue
		}
		contribs[stl.Currency] = append(contribs[stl.Currency], Contribution{
			Debtor:   stl.PayeeID,
			Creditor: stl.PayerID,
			Amount:   stl.Amount,
		})
	}

	return contribs, errors.Join(errs...)
}
