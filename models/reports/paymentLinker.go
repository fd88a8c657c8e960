package reports

import (
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
	"github.com/shopspring/decimal"
)

var amountTolerance = decimal.NewFromFloat(0.01)

const linkWindowDays = 30

// transactionCashAmount is the magnitude of the transaction's cash movement:
// the cash debits when money came in, else the cash credits.
func transactionCashAmount(txn *models.LedgerTransaction) decimal.Decimal {
	var debits, credits decimal.Decimal
	for _, line := range txn.CashLines() {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	if debits.IsPositive() {
		return debits
	}
	return credits
}

func amountsMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountTolerance)
}

// LinkPayment maps a transaction to the payment record that produced it.
// Rules run in priority order, first success wins; the later rules are
// fallbacks for missing or corrupt references. Returns nil when nothing
// matches; that is a recoverable condition, not an error.
func LinkPayment(txn *models.LedgerTransaction, payments []*models.Payment) *models.Payment {
	// 1. Explicit link: payment id carried on the transaction, or the
	// transaction's reference is the payment number.
	for _, p := range payments {
		if txn.PaymentId > 0 && txn.PaymentId == p.ID {
			return p
		}
		if txn.ReferenceNumber != "" && txn.ReferenceNumber == p.PaymentNumber {
			return p
		}
	}

	amount := transactionCashAmount(txn)

	// 2. Same student, same amount.
	if txn.StudentId > 0 {
		for _, p := range payments {
			if p.StudentId == txn.StudentId && amountsMatch(amount, p.TotalAmount) {
				return p
			}
		}
	}

	// 3. Same amount within the proximity window.
	for _, p := range payments {
		if !amountsMatch(amount, p.TotalAmount) {
			continue
		}
		gap := txn.TransactionDate.Sub(p.PaymentDate)
		if gap < 0 {
			gap = -gap
		}
		if gap <= linkWindowDays*24*time.Hour {
			return p
		}
	}

	return nil
}

// EffectiveDate is the date that buckets a transaction into a month. A linked
// payment pulls the transaction to the payment's date, except deposits, which
// always land in the month they were actually recorded: an unrelated linked
// payment must not move a deposit receipt or return.
func EffectiveDate(txn *models.LedgerTransaction, linked *models.Payment, isDeposit bool) time.Time {
	if isDeposit || linked == nil {
		return txn.TransactionDate
	}
	return linked.PaymentDate
}

// AdvanceMonth reports the allocation month when the amount is an advance
// payment: a month strictly later than the effective date's month. Structured
// allocations are consulted first; the "for YYYY-MM" description token is the
// fallback for payments recorded without a breakdown.
func AdvanceMonth(linked *models.Payment, signals DescriptionSignals, effectiveDate time.Time) (time.Time, bool) {
	effMonth := utils.StartOfMonth(effectiveDate.UTC())

	if linked != nil {
		for _, alloc := range linked.Allocations {
			allocMonth, err := utils.ParseMonthKey(alloc.Month)
			if err != nil {
				continue
			}
			if allocMonth.After(effMonth) {
				return allocMonth, true
			}
		}
		if len(linked.Allocations) > 0 {
			return time.Time{}, false
		}
	}

	if signals.ForMonth != nil && signals.ForMonth.After(effMonth) {
		return *signals.ForMonth, true
	}
	return time.Time{}, false
}
