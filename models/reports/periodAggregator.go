package reports

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
	"github.com/shopspring/decimal"
)

// Period is a parsed "YYYY" or "YYYY-MM" report period. Boundaries live in the
// business's reporting timezone; month keys and bucket membership follow it.
type Period struct {
	Raw     string
	Monthly bool
	Start   time.Time
	End     time.Time
	Loc     *time.Location
}

func (p Period) location() *time.Location {
	if p.Loc == nil {
		return time.UTC
	}
	return p.Loc
}

// ParsePeriod parses with UTC boundaries.
func ParsePeriod(raw string) (Period, error) {
	return ParsePeriodInLocation(raw, time.UTC)
}

// ParsePeriodInLocation anchors the period's day boundaries in the given
// timezone, so a statement for "2025-09" starts at local midnight, not UTC
// midnight.
func ParsePeriodInLocation(raw string, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse("2006-01", raw); err == nil {
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		return Period{
			Raw:     raw,
			Monthly: true,
			Start:   start,
			End:     utils.EndOfMonth(start),
			Loc:     loc,
		}, nil
	}
	if t, err := time.Parse("2006", raw); err == nil {
		start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return Period{
			Raw:   raw,
			Start: start,
			End:   start.AddDate(1, 0, 0).Add(-time.Nanosecond),
			Loc:   loc,
		}, nil
	}
	return Period{}, fmt.Errorf("invalid period %q: want YYYY or YYYY-MM", raw)
}

// Months lists the period's month starts: twelve for a yearly period, one for
// a monthly one.
func (p Period) Months() []time.Time {
	if p.Monthly {
		return []time.Time{p.Start}
	}
	months := make([]time.Time, 0, 12)
	for m := 0; m < 12; m++ {
		months = append(months, p.Start.AddDate(0, m, 0))
	}
	return months
}

type ActivityTotals struct {
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
	Net      decimal.Decimal `json:"net"`
}

type IncomeSection struct {
	Total      decimal.Decimal            `json:"total"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
}

// ExpenseEntry is one counted outflow. The Transactions list is the definitive
// per-transaction record the reconciliation verifier treats as source of truth.
type ExpenseEntry struct {
	TransactionId int             `json:"transaction_id,omitempty"`
	ExpenseId     int             `json:"expense_id,omitempty"`
	Description   string          `json:"description"`
	Taxonomy      string          `json:"taxonomy"`
	Amount        decimal.Decimal `json:"amount"`
}

type ExpenseSection struct {
	Total decimal.Decimal `json:"total"`
	// ByCategory keys are the verbatim transaction descriptions.
	ByCategory map[string]decimal.Decimal `json:"by_category"`
	// ByTaxonomy is the fixed maintenance/utilities/cleaning/security/management view.
	ByTaxonomy   map[string]decimal.Decimal `json:"by_taxonomy"`
	Transactions []ExpenseEntry             `json:"transactions"`
}

type MonthlyBucket struct {
	Month          string                     `json:"month"`
	MonthName      string                     `json:"month_name"`
	Income         IncomeSection              `json:"income"`
	Expenses       ExpenseSection             `json:"expenses"`
	Operating      ActivityTotals             `json:"operating_activities"`
	Investing      ActivityTotals             `json:"investing_activities"`
	Financing      ActivityTotals             `json:"financing_activities"`
	NetCashFlow    decimal.Decimal            `json:"net_cash_flow"`
	OpeningBalance decimal.Decimal            `json:"opening_balance"`
	ClosingBalance decimal.Decimal            `json:"closing_balance"`
	CashAccounts   map[string]decimal.Decimal `json:"cash_accounts"`
}

func newMonthlyBucket(monthStart time.Time) *MonthlyBucket {
	return &MonthlyBucket{
		Month:     utils.MonthKey(monthStart),
		MonthName: utils.MonthName(monthStart),
		Income: IncomeSection{
			ByCategory: make(map[string]decimal.Decimal),
		},
		Expenses: ExpenseSection{
			ByCategory:   make(map[string]decimal.Decimal),
			ByTaxonomy:   make(map[string]decimal.Decimal),
			Transactions: []ExpenseEntry{},
		},
		CashAccounts: make(map[string]decimal.Decimal),
	}
}

func (b *MonthlyBucket) activity(a Activity) *ActivityTotals {
	switch a {
	case ActivityInvesting:
		return &b.Investing
	case ActivityFinancing:
		return &b.Financing
	default:
		return &b.Operating
	}
}

// BuildMonthlyBuckets folds classified items into per-month buckets. Items
// whose bucket date falls outside the period (an effective date pulled before
// the period start by a linked payment) are logged and skipped rather than
// invented into a thirteenth bucket.
func BuildMonthlyBuckets(items []ClassifiedItem, period Period) map[string]*MonthlyBucket {
	logger := config.GetLogger()

	buckets := make(map[string]*MonthlyBucket)
	for _, monthStart := range period.Months() {
		buckets[utils.MonthKey(monthStart)] = newMonthlyBucket(monthStart)
	}

	loc := period.location()
	for _, item := range items {
		key := utils.MonthKey(item.BucketDate.In(loc))
		bucket, ok := buckets[key]
		if !ok {
			config.LogWarn(logger, "reports", "BuildMonthlyBuckets", "classified item falls outside report period", map[string]any{
				"transaction_id": item.TransactionId,
				"bucket_month":   key,
				"period":         period.Raw,
			})
			continue
		}

		totals := bucket.activity(item.Activity)
		switch item.Direction {
		case FlowInflow:
			bucket.Income.Total = bucket.Income.Total.Add(item.Amount)
			bucket.Income.ByCategory[item.Category] = bucket.Income.ByCategory[item.Category].Add(item.Amount)
			totals.Inflows = totals.Inflows.Add(item.Amount)
		case FlowOutflow:
			bucket.Expenses.Total = bucket.Expenses.Total.Add(item.Amount)
			bucket.Expenses.ByCategory[item.Category] = bucket.Expenses.ByCategory[item.Category].Add(item.Amount)
			bucket.Expenses.ByTaxonomy[item.Taxonomy] = bucket.Expenses.ByTaxonomy[item.Taxonomy].Add(item.Amount)
			bucket.Expenses.Transactions = append(bucket.Expenses.Transactions, ExpenseEntry{
				TransactionId: item.TransactionId,
				ExpenseId:     item.ExpenseId,
				Description:   item.Description,
				Taxonomy:      item.Taxonomy,
				Amount:        item.Amount,
			})
			totals.Outflows = totals.Outflows.Add(item.Amount)
		}
	}

	for _, bucket := range buckets {
		bucket.Operating.Net = bucket.Operating.Inflows.Sub(bucket.Operating.Outflows)
		bucket.Investing.Net = bucket.Investing.Inflows.Sub(bucket.Investing.Outflows)
		bucket.Financing.Net = bucket.Financing.Inflows.Sub(bucket.Financing.Outflows)
		bucket.NetCashFlow = bucket.Operating.Net.Add(bucket.Investing.Net).Add(bucket.Financing.Net)
	}

	return buckets
}

// ApplyRunningBalances chains opening/closing balances through the buckets in
// month order: each month opens where the previous one closed.
func ApplyRunningBalances(buckets map[string]*MonthlyBucket, openingCash decimal.Decimal) {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	running := openingCash
	for _, key := range keys {
		bucket := buckets[key]
		bucket.OpeningBalance = running
		bucket.ClosingBalance = running.Add(bucket.NetCashFlow)
		running = bucket.ClosingBalance
	}
}

// FetchMonthCashSnapshots queries ledger cash-account balances as of each
// month's end. The per-month queries are independent, so they run
// concurrently; results merge deterministically by month key. Month ends are
// clamped to now for the current month; future months report zero balances.
func FetchMonthCashSnapshots(ctx context.Context, buckets map[string]*MonthlyBucket, loc *time.Location, residenceId *int, now time.Time) error {
	if loc == nil {
		loc = time.UTC
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for key, bucket := range buckets {
		parsed, err := utils.ParseMonthKey(key)
		if err != nil {
			return err
		}
		monthStart := time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, loc)
		if monthStart.After(now) {
			continue
		}

		asOf := utils.EndOfMonth(monthStart)
		if asOf.After(now) {
			asOf = now
		}

		wg.Add(1)
		go func(bucket *MonthlyBucket, asOf time.Time) {
			defer wg.Done()
			balances, err := models.CashBalanceAsOf(ctx, asOf, residenceId)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			bucket.CashAccounts = balances
		}(bucket, asOf)
	}

	wg.Wait()
	return firstErr
}

// AggregatePeriod runs the full aggregation: fold items into buckets, fetch
// the ledger opening balance as of the day before the period, chain running
// balances, and attach the month-end cash snapshots.
func AggregatePeriod(ctx context.Context, items []ClassifiedItem, period Period, residenceId *int, now time.Time) (map[string]*MonthlyBucket, decimal.Decimal, error) {
	buckets := BuildMonthlyBuckets(items, period)

	// Per-bucket verification runs before balances are chained so corrections
	// flow into opening/closing.
	for _, bucket := range buckets {
		VerifyBucket(bucket)
	}

	openingCash, err := models.TotalCashBalanceAsOf(ctx, period.Start.AddDate(0, 0, -1), residenceId)
	if err != nil {
		return nil, decimal.Zero, wrapQueryErr("fetching opening cash balance", err)
	}

	ApplyRunningBalances(buckets, openingCash)

	if err := FetchMonthCashSnapshots(ctx, buckets, period.location(), residenceId, now); err != nil {
		return nil, decimal.Zero, wrapQueryErr("fetching month-end cash snapshots", err)
	}

	return buckets, openingCash, nil
}

// wrapQueryErr keeps the cause in the chain so callers can match it with
// errors.Is.
func wrapQueryErr(context string, err error) error {
	return fmt.Errorf("%s: %w", context, err)
}
