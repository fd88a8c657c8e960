package reports

import (
	"strings"

	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
)

type ExclusionReason string

const (
	ExclusionBalanceSheetAdjustment ExclusionReason = "BalanceSheetAdjustment"
	ExclusionInternalCashTransfer   ExclusionReason = "InternalCashTransfer"
	ExclusionAccrualWithoutCash     ExclusionReason = "AccrualWithoutCash"
	ExclusionLatePaymentFee         ExclusionReason = "LatePaymentFee"
)

// Reference/transaction numbers carrying this prefix are balance-sheet
// adjustments regardless of description.
const adjustmentReferencePrefix = "ADJ"

// Inclusion is the exclusion filter's verdict for one transaction. When the
// transaction survives, CashLines holds its cash legs (non-zero lines posted
// to cash accounts) for the categorizer.
type Inclusion struct {
	Excluded  bool
	Reason    ExclusionReason
	Signals   DescriptionSignals
	CashLines []models.LedgerLine
}

func excluded(reason ExclusionReason, signals DescriptionSignals) Inclusion {
	return Inclusion{Excluded: true, Reason: reason, Signals: signals}
}

// ClassifyTransaction decides whether a transaction represents real cash
// movement. Reasons are evaluated in strict priority order and the first match
// wins, so at most one reason ever applies. The function is pure: same input,
// same verdict.
//
// Under the accrual basis the AccrualWithoutCash rule is suspended; earned and
// incurred amounts flow through on their ledger dates.
func ClassifyTransaction(txn *models.LedgerTransaction, basis models.CashflowBasis) Inclusion {
	signals := ExtractDescriptionSignals(txn.Description)

	// 1. Balance-sheet adjustments: keyword or reference prefix.
	if signals.HasAdjustmentKeyword ||
		strings.HasPrefix(strings.ToUpper(txn.ReferenceNumber), adjustmentReferencePrefix) ||
		strings.HasPrefix(strings.ToUpper(txn.TransactionNumber), adjustmentReferencePrefix) {
		return excluded(ExclusionBalanceSheetAdjustment, signals)
	}

	// 2. Internal cash transfers. The structural check is authoritative:
	// a cash account debited AND a cash account credited, with no leg posting
	// to an income/expense/liability account. Transfer keywords in the
	// description reinforce but never decide on their own: they only tip a
	// movement whose non-zero legs are all cash, which catches transfers the
	// importer posted one-sided.
	if isInternalCashTransfer(txn) || (signals.HasTransferKeyword && cashOnlyMovement(txn)) {
		return excluded(ExclusionInternalCashTransfer, signals)
	}

	cashLines := nonZeroCashLines(txn)

	// 3. Accrual without cash: income/expense recognised, nothing moved.
	if basis != models.CashflowBasisAccrual {
		if (txn.HasLineOfType(models.AccountMainTypeIncome) || txn.HasLineOfType(models.AccountMainTypeExpense)) &&
			len(cashLines) == 0 {
			return excluded(ExclusionAccrualWithoutCash, signals)
		}
	}

	// 4. Late payment fees are a policy exclusion regardless of structure.
	if signals.HasLateFee || hasLateFeeLine(txn) {
		return excluded(ExclusionLatePaymentFee, signals)
	}

	return Inclusion{Signals: signals, CashLines: cashLines}
}

func nonZeroCashLines(txn *models.LedgerTransaction) []models.LedgerLine {
	var out []models.LedgerLine
	for _, line := range txn.CashLines() {
		if line.Debit.IsPositive() || line.Credit.IsPositive() {
			out = append(out, line)
		}
	}
	return out
}

// cashOnlyMovement reports whether every non-zero leg posts to a cash
// account. An economic leg (or no cash leg at all) disqualifies it.
func cashOnlyMovement(txn *models.LedgerTransaction) bool {
	var cash int
	for _, line := range txn.Lines {
		if line.Debit.IsZero() && line.Credit.IsZero() {
			continue
		}
		if !models.IsCashAccount(line.AccountCode, line.AccountName) {
			return false
		}
		cash++
	}
	return cash > 0
}

func isInternalCashTransfer(txn *models.LedgerTransaction) bool {
	if len(txn.Lines) < 2 {
		return false
	}
	var cashDebit, cashCredit bool
	for _, line := range txn.Lines {
		if models.IsCashAccount(line.AccountCode, line.AccountName) {
			if line.Debit.IsPositive() {
				cashDebit = true
			}
			if line.Credit.IsPositive() {
				cashCredit = true
			}
			continue
		}
		switch line.AccountType {
		case models.AccountMainTypeIncome, models.AccountMainTypeExpense, models.AccountMainTypeLiability:
			// A non-cash economic leg means this is not a pure transfer.
			return false
		}
	}
	return cashDebit && cashCredit
}

func hasLateFeeLine(txn *models.LedgerTransaction) bool {
	for _, line := range txn.Lines {
		name := strings.ToLower(line.AccountName)
		if strings.Contains(name, "late") && (strings.Contains(name, "fee") || strings.Contains(name, "payment")) {
			return true
		}
	}
	return false
}
