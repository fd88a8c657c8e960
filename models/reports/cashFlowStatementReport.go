package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type CashFlowStatementInput struct {
	Period      string `json:"period" validate:"required"`
	Basis       string `json:"basis" validate:"omitempty,oneof=cash accrual"`
	ResidenceId *int   `json:"residence_id"`
	// AsOf backdates the statement: balances and reconciliation treat the end
	// of this business-local date as "now".
	AsOf *models.MyDateString `json:"as_of"`
	// ForceRefresh drops the cached statement and rebuilds.
	ForceRefresh bool `json:"force_refresh"`
}

type PeriodTotals struct {
	Income      IncomeSection   `json:"income"`
	Expenses    ExpenseSection  `json:"expenses"`
	Operating   ActivityTotals  `json:"operating_activities"`
	Investing   ActivityTotals  `json:"investing_activities"`
	Financing   ActivityTotals  `json:"financing_activities"`
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`
}

type CashFlowStatement struct {
	Period string               `json:"period"`
	Basis  models.CashflowBasis `json:"basis"`
	// MonthlyBreakdown is keyed "YYYY-MM"; Bucket() also resolves lower-case
	// month names since downstream consumers use both addressing schemes.
	MonthlyBreakdown     map[string]*MonthlyBucket  `json:"monthly_breakdown"`
	YearlyTotals         PeriodTotals               `json:"yearly_totals"`
	CashBalanceByAccount map[string]decimal.Decimal `json:"cash_balance_by_account"`
	Reconciliation       Reconciliation             `json:"reconciliation"`
	GeneratedAt          time.Time                  `json:"generated_at"`
}

// Bucket resolves a month by "YYYY-MM" key or lower-case month name.
func (s *CashFlowStatement) Bucket(key string) *MonthlyBucket {
	if bucket, ok := s.MonthlyBreakdown[key]; ok {
		return bucket
	}
	for _, bucket := range s.MonthlyBreakdown {
		if bucket.MonthName == key {
			return bucket
		}
	}
	return nil
}

// buildClassifiedItems runs the classification pipeline over one invocation's
// batch: exclusion filter, payment linking, categorization, and exactly-once
// counting across the ledger and the denormalized expense records. The dedup
// context lives and dies with this call.
func buildClassifiedItems(txns []*models.LedgerTransaction, payments []*models.Payment, expenses []*models.Expense, basis models.CashflowBasis) []ClassifiedItem {
	dedup := NewDedupContext()
	var items []ClassifiedItem

	for _, txn := range txns {
		inc := ClassifyTransaction(txn, basis)
		if inc.Excluded {
			continue
		}
		if !dedup.MarkTransaction(txn.ID) {
			continue
		}
		item, ok := classifyOne(txn, inc, payments, expenses, dedup, basis)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	// Paid expenses with no surviving ledger twin contribute through the
	// denormalized record; the other half of the exactly-once invariant.
	for _, e := range expenses {
		if dedup.ExpenseCounted(e.ID) {
			continue
		}
		dedup.MarkExpense(e.ID)
		desc := e.Description
		if desc == "" {
			desc = e.Category
		}
		items = append(items, ClassifiedItem{
			ExpenseId:   e.ID,
			Description: desc,
			Category:    desc,
			Taxonomy:    FixedTaxonomy(e.Category + " " + e.Description),
			Direction:   FlowOutflow,
			Activity:    ActivityOperating,
			Amount:      e.Amount,
			BucketDate:  e.ExpenseDate,
		})
	}

	return items
}

func classifyOne(txn *models.LedgerTransaction, inc Inclusion, payments []*models.Payment, expenses []*models.Expense, dedup *DedupContext, basis models.CashflowBasis) (ClassifiedItem, bool) {
	logger := config.GetLogger()

	var debits, credits decimal.Decimal
	for _, line := range inc.CashLines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	net := debits.Sub(credits)

	direction := FlowInflow
	amount := net
	switch {
	case net.IsPositive():
		// inflow
	case net.IsNegative():
		direction = FlowOutflow
		amount = net.Neg()
	default:
		if basis != models.CashflowBasisAccrual {
			return ClassifiedItem{}, false
		}
		// Accrual basis: no cash leg, recognise from the income/expense legs
		// on the ledger date.
		direction, amount = accrualFlow(txn)
		if amount.IsZero() {
			return ClassifiedItem{}, false
		}
		return accrualItem(txn, direction, amount, expenses, dedup)
	}

	isDeposit := IsDepositTransaction(txn)
	linked := LinkPayment(txn, payments)
	effective := EffectiveDate(txn, linked, isDeposit)

	if direction == FlowInflow {
		_, isAdvance := AdvanceMonth(linked, inc.Signals, effective)
		category, ok := CategorizeInflow(txn, inc.Signals, isAdvance)
		if !ok {
			// Unclassified income stays out of the statement; log it so the
			// amount is investigable, never mis-reported.
			config.LogWarn(logger, "reports", "classifyOne", "unclassified income excluded from statement", map[string]any{
				"transaction_id": txn.ID,
				"description":    txn.Description,
				"amount":         amount,
			})
			return ClassifiedItem{}, false
		}
		return ClassifiedItem{
			TransactionId: txn.ID,
			Description:   txn.Description,
			Category:      category,
			Direction:     FlowInflow,
			Activity:      ActivityFor(txn),
			Amount:        amount,
			BucketDate:    effective,
		}, true
	}

	// Outflow: the verbatim description is the monthly bucket name; the fixed
	// taxonomy is the secondary view. A matching denormalized expense record
	// is marked counted so it can't be counted again from the expense pass.
	// Deposit returns are liability settlements, not expenses, so they never
	// consume an expense record.
	expenseId := 0
	if !IsDepositReturn(txn) {
		if matched := MatchExpense(txn, expenses); matched != nil {
			dedup.MarkExpense(matched.ID)
			expenseId = matched.ID
		}
	}
	desc := txn.Description
	if desc == "" {
		desc = "uncategorized expense"
	}
	return ClassifiedItem{
		TransactionId: txn.ID,
		ExpenseId:     expenseId,
		Description:   desc,
		Category:      desc,
		Taxonomy:      FixedTaxonomy(desc),
		Direction:     FlowOutflow,
		Activity:      ActivityFor(txn),
		Amount:        amount,
		BucketDate:    effective,
	}, true
}

func accrualFlow(txn *models.LedgerTransaction) (FlowDirection, decimal.Decimal) {
	var income, expense decimal.Decimal
	for _, line := range txn.Lines {
		if line.AccountType == models.AccountMainTypeIncome {
			income = income.Add(line.Credit).Sub(line.Debit)
		}
		if line.AccountType == models.AccountMainTypeExpense {
			expense = expense.Add(line.Debit).Sub(line.Credit)
		}
	}
	if income.IsPositive() {
		return FlowInflow, income
	}
	if expense.IsPositive() {
		return FlowOutflow, expense
	}
	return FlowInflow, decimal.Zero
}

func accrualItem(txn *models.LedgerTransaction, direction FlowDirection, amount decimal.Decimal, expenses []*models.Expense, dedup *DedupContext) (ClassifiedItem, bool) {
	item := ClassifiedItem{
		TransactionId: txn.ID,
		Description:   txn.Description,
		Direction:     direction,
		Activity:      ActivityFor(txn),
		Amount:        amount,
		BucketDate:    txn.TransactionDate,
	}
	if direction == FlowInflow {
		signals := ExtractDescriptionSignals(txn.Description)
		category, ok := CategorizeInflow(txn, signals, false)
		if !ok {
			return ClassifiedItem{}, false
		}
		item.Category = category
		return item, true
	}
	if matched := MatchExpense(txn, expenses); matched != nil {
		dedup.MarkExpense(matched.ID)
		item.ExpenseId = matched.ID
	}
	desc := txn.Description
	if desc == "" {
		desc = "uncategorized expense"
	}
	item.Category = desc
	item.Taxonomy = FixedTaxonomy(desc)
	return item, true
}

func sumPeriodTotals(buckets map[string]*MonthlyBucket) PeriodTotals {
	totals := PeriodTotals{
		Income:   IncomeSection{ByCategory: make(map[string]decimal.Decimal)},
		Expenses: ExpenseSection{ByCategory: make(map[string]decimal.Decimal), ByTaxonomy: make(map[string]decimal.Decimal), Transactions: []ExpenseEntry{}},
	}
	for _, b := range buckets {
		totals.Income.Total = totals.Income.Total.Add(b.Income.Total)
		for k, v := range b.Income.ByCategory {
			totals.Income.ByCategory[k] = totals.Income.ByCategory[k].Add(v)
		}
		totals.Expenses.Total = totals.Expenses.Total.Add(b.Expenses.Total)
		for k, v := range b.Expenses.ByCategory {
			totals.Expenses.ByCategory[k] = totals.Expenses.ByCategory[k].Add(v)
		}
		for k, v := range b.Expenses.ByTaxonomy {
			totals.Expenses.ByTaxonomy[k] = totals.Expenses.ByTaxonomy[k].Add(v)
		}
		totals.Expenses.Transactions = append(totals.Expenses.Transactions, b.Expenses.Transactions...)

		totals.Operating.Inflows = totals.Operating.Inflows.Add(b.Operating.Inflows)
		totals.Operating.Outflows = totals.Operating.Outflows.Add(b.Operating.Outflows)
		totals.Investing.Inflows = totals.Investing.Inflows.Add(b.Investing.Inflows)
		totals.Investing.Outflows = totals.Investing.Outflows.Add(b.Investing.Outflows)
		totals.Financing.Inflows = totals.Financing.Inflows.Add(b.Financing.Inflows)
		totals.Financing.Outflows = totals.Financing.Outflows.Add(b.Financing.Outflows)
	}
	totals.Operating.Net = totals.Operating.Inflows.Sub(totals.Operating.Outflows)
	totals.Investing.Net = totals.Investing.Inflows.Sub(totals.Investing.Outflows)
	totals.Financing.Net = totals.Financing.Inflows.Sub(totals.Financing.Outflows)
	totals.NetCashFlow = totals.Operating.Net.Add(totals.Investing.Net).Add(totals.Financing.Net)
	return totals
}

// GenerateCashFlowStatement is the engine's single entry point: one fetch of
// the period's transactions, payments and expenses, one deterministic fold.
// Upstream query failures propagate unmodified; a successful invocation always
// returns a complete statement, possibly with a non-zero reconciliation
// difference flagged.
func GenerateCashFlowStatement(ctx context.Context, input *CashFlowStatementInput) (*CashFlowStatement, error) {
	started := time.Now()

	if input == nil {
		return nil, errors.New("input is required")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	// The business record carries the reporting timezone; period boundaries
	// and month membership are local to it.
	business, err := models.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	timezone := business.Timezone
	if timezone == "" {
		timezone = utils.DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}

	period, err := ParsePeriodInLocation(input.Period, loc)
	if err != nil {
		return nil, err
	}
	basis := models.CashflowBasisCash
	if input.Basis != "" {
		basis = models.CashflowBasis(input.Basis)
	}

	if input.ResidenceId != nil {
		if _, err := models.GetResidence(ctx, *input.ResidenceId); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	asOfKey := "live"
	if input.AsOf != nil {
		cutoff := *input.AsOf
		if err := cutoff.EndOfDayUTCTime(timezone); err != nil {
			return nil, err
		}
		if cut := time.Time(cutoff); cut.Before(now) {
			now = cut
		}
		asOfKey = time.Time(*input.AsOf).Format("2006-01-02")
	}

	tracer := otel.Tracer("lodgebooks/reports")
	ctx, span := tracer.Start(ctx, "GenerateCashFlowStatement", trace.WithAttributes(
		attribute.String("report.period", input.Period),
		attribute.String("report.basis", string(basis)),
	))
	defer span.End()

	residence := utils.DereferencePtr(input.ResidenceId)
	cacheKey := fmt.Sprintf("CashFlowStatement:%s:%s:%s:%d:%s", businessId, period.Raw, basis, residence, asOfKey)

	if config.ReportCacheEnabled() && input.ForceRefresh {
		if err := cacheDel(cacheKey); err != nil {
			config.LogError(config.GetLogger(), "reports", "GenerateCashFlowStatement", "dropping cached statement", cacheKey, err)
		}
	}
	if config.ReportCacheEnabled() && !input.ForceRefresh {
		var cached CashFlowStatement
		exists, err := cacheGet(cacheKey, &cached)
		if err == nil && exists {
			return &cached, nil
		}
		// Single-flight on the rebuild; if the lock can't be obtained the
		// rebuild still runs, it's only stampede protection.
		if lock, lockErr := utils.ReportLock(ctx, businessId, "CashFlowStatement"); lockErr == nil && lock != nil {
			defer lock.Release(ctx)
			if exists, err := cacheGet(cacheKey, &cached); err == nil && exists {
				return &cached, nil
			}
		}
	}

	// Payments are fetched with the linking window widened before the period
	// start: a transaction inside the period may have been produced by a
	// payment up to 30 days earlier.
	transactions, err := models.FindTransactions(ctx, period.Start, period.End, input.ResidenceId)
	if err != nil {
		return nil, err
	}
	payments, err := models.FindPayments(ctx, period.Start.AddDate(0, 0, -linkWindowDays), period.End, input.ResidenceId)
	if err != nil {
		return nil, err
	}
	expenses, err := models.FindExpenses(ctx, period.Start, period.End, input.ResidenceId)
	if err != nil {
		return nil, err
	}

	items := buildClassifiedItems(transactions, payments, expenses, basis)

	buckets, openingCash, err := AggregatePeriod(ctx, items, period, input.ResidenceId, now)
	if err != nil {
		return nil, err
	}

	reconciliation, err := ReconcileStatement(ctx, buckets, openingCash, period, input.ResidenceId, now)
	if err != nil {
		return nil, err
	}

	endingAsOf := period.End
	if endingAsOf.After(now) {
		endingAsOf = now
	}
	cashByAccount, err := models.CashBalanceAsOf(ctx, endingAsOf, input.ResidenceId)
	if err != nil {
		return nil, err
	}
	// Cash accounts with no ledger activity still belong on the statement, at
	// zero.
	cashAccounts, err := models.GetCashAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, account := range cashAccounts {
		if _, ok := cashByAccount[account.Code]; !ok {
			cashByAccount[account.Code] = decimal.Zero
		}
	}

	statement := &CashFlowStatement{
		Period:               period.Raw,
		Basis:                basis,
		MonthlyBreakdown:     buckets,
		YearlyTotals:         sumPeriodTotals(buckets),
		CashBalanceByAccount: cashByAccount,
		Reconciliation:       reconciliation,
		GeneratedAt:          time.Now().UTC(),
	}
	roundStatement(statement)

	if config.ReportCacheEnabled() {
		if err := cacheSet(cacheKey, statement, reportCacheTTL()); err != nil {
			config.LogError(config.GetLogger(), "reports", "GenerateCashFlowStatement", "caching statement", cacheKey, err)
		}
	}

	logSlowReport(ctx, "cash_flow_statement", started, map[string]any{
		"period":       period.Raw,
		"transactions": len(transactions),
	})
	return statement, nil
}

// roundStatement applies the 2-decimal statement precision. Bucket arithmetic
// upstream is exact; rounding happens once, here.
func roundStatement(s *CashFlowStatement) {
	roundActivity := func(a *ActivityTotals) {
		a.Inflows = utils.RoundMoney(a.Inflows)
		a.Outflows = utils.RoundMoney(a.Outflows)
		a.Net = utils.RoundMoney(a.Net)
	}
	roundMap := func(m map[string]decimal.Decimal) {
		for k, v := range m {
			m[k] = utils.RoundMoney(v)
		}
	}
	roundBucket := func(b *MonthlyBucket) {
		b.Income.Total = utils.RoundMoney(b.Income.Total)
		roundMap(b.Income.ByCategory)
		b.Expenses.Total = utils.RoundMoney(b.Expenses.Total)
		roundMap(b.Expenses.ByCategory)
		roundMap(b.Expenses.ByTaxonomy)
		for i := range b.Expenses.Transactions {
			b.Expenses.Transactions[i].Amount = utils.RoundMoney(b.Expenses.Transactions[i].Amount)
		}
		roundActivity(&b.Operating)
		roundActivity(&b.Investing)
		roundActivity(&b.Financing)
		b.NetCashFlow = utils.RoundMoney(b.NetCashFlow)
		b.OpeningBalance = utils.RoundMoney(b.OpeningBalance)
		b.ClosingBalance = utils.RoundMoney(b.ClosingBalance)
		roundMap(b.CashAccounts)
	}

	for _, b := range s.MonthlyBreakdown {
		roundBucket(b)
	}
	s.YearlyTotals.Income.Total = utils.RoundMoney(s.YearlyTotals.Income.Total)
	roundMap(s.YearlyTotals.Income.ByCategory)
	s.YearlyTotals.Expenses.Total = utils.RoundMoney(s.YearlyTotals.Expenses.Total)
	roundMap(s.YearlyTotals.Expenses.ByCategory)
	roundMap(s.YearlyTotals.Expenses.ByTaxonomy)
	for i := range s.YearlyTotals.Expenses.Transactions {
		s.YearlyTotals.Expenses.Transactions[i].Amount = utils.RoundMoney(s.YearlyTotals.Expenses.Transactions[i].Amount)
	}
	roundActivity(&s.YearlyTotals.Operating)
	roundActivity(&s.YearlyTotals.Investing)
	roundActivity(&s.YearlyTotals.Financing)
	s.YearlyTotals.NetCashFlow = utils.RoundMoney(s.YearlyTotals.NetCashFlow)
	roundMap(s.CashBalanceByAccount)

	s.Reconciliation.BeginningCash = utils.RoundMoney(s.Reconciliation.BeginningCash)
	s.Reconciliation.CashInflows = utils.RoundMoney(s.Reconciliation.CashInflows)
	s.Reconciliation.CashOutflows = utils.RoundMoney(s.Reconciliation.CashOutflows)
	s.Reconciliation.CalculatedEndingCash = utils.RoundMoney(s.Reconciliation.CalculatedEndingCash)
	s.Reconciliation.ActualEndingCash = utils.RoundMoney(s.Reconciliation.ActualEndingCash)
	s.Reconciliation.Difference = utils.RoundMoney(s.Reconciliation.Difference)
}
