package reports

import (
	"context"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
	"github.com/shopspring/decimal"
)

// Reconciliation is the statement-level check against the ledger. Difference
// is actual minus calculated ending cash; non-zero values are surfaced in the
// output for operators to investigate, never silently zeroed.
type Reconciliation struct {
	BeginningCash        decimal.Decimal `json:"beginning_cash"`
	CashInflows          decimal.Decimal `json:"cash_inflows"`
	CashOutflows         decimal.Decimal `json:"cash_outflows"`
	CalculatedEndingCash decimal.Decimal `json:"calculated_ending_cash"`
	ActualEndingCash     decimal.Decimal `json:"actual_ending_cash"`
	Difference           decimal.Decimal `json:"difference"`
}

// VerifyBucket recomputes the expense total from the bucket's per-transaction
// list, which is the definitive record, and corrects the accumulated total when the
// two disagree. Operating outflows and nets shift by the same delta. Returns
// the correction applied (zero when the bucket was already consistent).
func VerifyBucket(bucket *MonthlyBucket) decimal.Decimal {
	if len(bucket.Expenses.Transactions) == 0 {
		return decimal.Zero
	}

	var recomputed decimal.Decimal
	for _, entry := range bucket.Expenses.Transactions {
		recomputed = recomputed.Add(entry.Amount)
	}

	delta := recomputed.Sub(bucket.Expenses.Total)
	if delta.IsZero() {
		return decimal.Zero
	}

	logger := config.GetLogger()
	config.LogWarn(logger, "reports", "VerifyBucket", "expense total diverged from transaction list; corrected", map[string]any{
		"month":      bucket.Month,
		"stored":     bucket.Expenses.Total,
		"recomputed": recomputed,
	})

	bucket.Expenses.Total = recomputed
	bucket.Operating.Outflows = bucket.Operating.Outflows.Add(delta)
	bucket.Operating.Net = bucket.Operating.Inflows.Sub(bucket.Operating.Outflows)
	bucket.NetCashFlow = bucket.Operating.Net.Add(bucket.Investing.Net).Add(bucket.Financing.Net)
	return delta
}

// ReconcileStatement compares beginning cash plus net change against the
// ledger's independently queried ending cash balance.
func sumActivityFlows(buckets map[string]*MonthlyBucket) (decimal.Decimal, decimal.Decimal) {
	var inflows, outflows decimal.Decimal
	for _, bucket := range buckets {
		inflows = inflows.Add(bucket.Operating.Inflows).Add(bucket.Investing.Inflows).Add(bucket.Financing.Inflows)
		outflows = outflows.Add(bucket.Operating.Outflows).Add(bucket.Investing.Outflows).Add(bucket.Financing.Outflows)
	}
	return inflows, outflows
}

func ReconcileStatement(ctx context.Context, buckets map[string]*MonthlyBucket, beginningCash decimal.Decimal, period Period, residenceId *int, now time.Time) (Reconciliation, error) {
	inflows, outflows := sumActivityFlows(buckets)

	asOf := period.End
	if asOf.After(now) {
		asOf = now
	}
	actual, err := models.TotalCashBalanceAsOf(ctx, asOf, residenceId)
	if err != nil {
		return Reconciliation{}, err
	}

	calculated := beginningCash.Add(inflows).Sub(outflows)
	return Reconciliation{
		BeginningCash:        beginningCash,
		CashInflows:          inflows,
		CashOutflows:         outflows,
		CalculatedEndingCash: calculated,
		ActualEndingCash:     actual,
		Difference:           actual.Sub(calculated),
	}, nil
}
