package reports

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
)

// DedupContext tracks which transaction and expense ids have already been
// counted within one statement build. It is created per invocation and passed
// explicitly through the pipeline, never process-wide state, so concurrent
// statement builds cannot leak dedup decisions into each other.
type DedupContext struct {
	countedTransactions map[int]bool
	countedExpenses     map[int]bool
}

func NewDedupContext() *DedupContext {
	return &DedupContext{
		countedTransactions: make(map[int]bool),
		countedExpenses:     make(map[int]bool),
	}
}

// MarkTransaction records a transaction as counted. Returns false when it was
// already counted, in which case the caller must not count it again.
func (d *DedupContext) MarkTransaction(id int) bool {
	if d.countedTransactions[id] {
		return false
	}
	d.countedTransactions[id] = true
	return true
}

func (d *DedupContext) MarkExpense(id int) bool {
	if d.countedExpenses[id] {
		return false
	}
	d.countedExpenses[id] = true
	return true
}

func (d *DedupContext) ExpenseCounted(id int) bool {
	return d.countedExpenses[id]
}

var embeddedExpenseIdPattern = regexp.MustCompile(`expense[\s#:]*(\d+)`)

const expenseProximityDays = 3

// MatchExpense finds the denormalized expense record for a ledger transaction,
// checking the strong signals first: explicit source link, shared reference,
// an expense id embedded in the description, then description+amount+date
// proximity as the last resort. One deterministic pass; no bidirectional
// substring probing.
func MatchExpense(txn *models.LedgerTransaction, expenses []*models.Expense) *models.Expense {
	for _, e := range expenses {
		if e.SourceTransactionId > 0 && e.SourceTransactionId == txn.ID {
			return e
		}
	}

	if txn.ReferenceNumber != "" {
		for _, e := range expenses {
			if e.ReferenceNumber != "" && e.ReferenceNumber == txn.ReferenceNumber {
				return e
			}
		}
	}

	if m := embeddedExpenseIdPattern.FindStringSubmatch(strings.ToLower(txn.Description)); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			for _, e := range expenses {
				if e.ID == id {
					return e
				}
			}
		}
	}

	amount := transactionCashAmount(txn)
	txnDesc := strings.ToLower(strings.TrimSpace(txn.Description))
	for _, e := range expenses {
		if !amountsMatch(amount, e.Amount) {
			continue
		}
		gap := txn.TransactionDate.Sub(e.ExpenseDate)
		if gap < 0 {
			gap = -gap
		}
		if gap > expenseProximityDays*24*time.Hour {
			continue
		}
		expDesc := strings.ToLower(strings.TrimSpace(e.Description))
		if expDesc != "" && txnDesc != "" && (expDesc == txnDesc || strings.Contains(txnDesc, expDesc)) {
			return e
		}
	}

	return nil
}
