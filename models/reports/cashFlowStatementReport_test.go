package reports

import (
	"testing"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
)

func TestBuildClassifiedItems_AdvanceRentBucketsByPaymentMonth(t *testing.T) {
	// Rent received 28 August for September: the ledger posts on 2
	// September but the cash moved in August, so the item lands in August
	// as an advance payment.
	receipt := rentReceipt(100, day(2025, time.September, 2), "payment received - room 5", "300")
	receipt.PaymentId = 55

	payments := []*models.Payment{
		{
			ID:          55,
			PaymentDate: day(2025, time.August, 28),
			TotalAmount: dec("300"),
			Status:      models.PaymentStatusConfirmed,
			Allocations: []models.PaymentAllocation{
				{Month: "2025-09", AmountAllocated: dec("300"), AllocationType: models.AllocationTypeRent},
			},
		},
	}

	items := buildClassifiedItems([]*models.LedgerTransaction{receipt}, payments, nil, models.CashflowBasisCash)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Category != CategoryAdvancePayments {
		t.Fatalf("expected %s, got %s", CategoryAdvancePayments, item.Category)
	}
	if item.BucketDate.Month() != time.August {
		t.Fatalf("expected August bucket, got %s", item.BucketDate)
	}
	if !item.Amount.Equal(dec("300")) {
		t.Fatalf("expected 300, got %s", item.Amount)
	}
}

func TestBuildClassifiedItems_ExclusionsAndDuplicatesDropped(t *testing.T) {
	rent := rentReceipt(101, day(2025, time.August, 5), "rent - room 1", "300")
	transfer := txn(102, day(2025, time.August, 6), "transfer to petty cash",
		ln("1001", "Petty Cash", models.AccountMainTypeAsset, "500", "0"),
		ln("1000", "CBZ Bank", models.AccountMainTypeAsset, "0", "500"),
	)
	duplicate := rentReceipt(101, day(2025, time.August, 5), "rent - room 1", "300")

	items := buildClassifiedItems([]*models.LedgerTransaction{rent, transfer, duplicate}, nil, nil, models.CashflowBasisCash)
	if len(items) != 1 {
		t.Fatalf("expected only the rent receipt, got %d items", len(items))
	}
	if items[0].TransactionId != 101 || items[0].Category != CategoryRent {
		t.Fatalf("unexpected item %+v", items[0])
	}
}

func TestBuildClassifiedItems_ExpenseCountedOnce(t *testing.T) {
	// The same plumbing job exists as a ledger transaction and as a
	// denormalized expense record. One outflow, not two.
	payment := cashExpense(103, day(2025, time.October, 5), "plumbing repair - block a", "120")
	expenses := []*models.Expense{
		{ID: 7, Amount: dec("120"), ExpenseDate: day(2025, time.October, 5), Description: "plumbing repair - block a", PaymentStatus: models.ExpensePaymentStatusPaid, SourceTransactionId: 103},
		{ID: 8, Amount: dec("60"), ExpenseDate: day(2025, time.October, 9), Description: "water bill", Category: "utilities", PaymentStatus: models.ExpensePaymentStatusPaid},
	}

	items := buildClassifiedItems([]*models.LedgerTransaction{payment}, nil, expenses, models.CashflowBasisCash)
	if len(items) != 2 {
		t.Fatalf("expected ledger outflow plus leftover expense, got %d items", len(items))
	}

	ledgerItem := items[0]
	if ledgerItem.TransactionId != 103 || ledgerItem.ExpenseId != 7 {
		t.Fatalf("ledger item should carry the matched expense id, got %+v", ledgerItem)
	}
	if ledgerItem.Category != "plumbing repair - block a" {
		t.Fatalf("outflow category must be the verbatim description, got %q", ledgerItem.Category)
	}
	if ledgerItem.Taxonomy != TaxonomyMaintenance {
		t.Fatalf("expected maintenance taxonomy, got %s", ledgerItem.Taxonomy)
	}

	leftover := items[1]
	if leftover.ExpenseId != 8 || !leftover.Amount.Equal(dec("60")) {
		t.Fatalf("unexpected leftover expense item %+v", leftover)
	}
	if leftover.Taxonomy != TaxonomyUtilities {
		t.Fatalf("leftover taxonomy: expected %s, got %s", TaxonomyUtilities, leftover.Taxonomy)
	}
}

func TestBuildClassifiedItems_UnclassifiedIncomeDropped(t *testing.T) {
	receipt := txn(104, day(2025, time.August, 5), "receipt 9983",
		ln("1000", "CBZ Bank", models.AccountMainTypeAsset, "40", "0"),
		ln("4009", "Sundry Income", models.AccountMainTypeIncome, "0", "40"),
	)
	items := buildClassifiedItems([]*models.LedgerTransaction{receipt}, nil, nil, models.CashflowBasisCash)
	if len(items) != 0 {
		t.Fatalf("unclassified income must stay out of the statement, got %d items", len(items))
	}
}

func TestBuildClassifiedItems_AccrualBasisRecognisesUnpaidRent(t *testing.T) {
	accrued := txn(105, day(2025, time.April, 1), "rent due - room 12",
		ln("1200", "Accounts Receivable", models.AccountMainTypeAsset, "300", "0"),
		ln(models.AccountCodeRentIncome, "Rental Income", models.AccountMainTypeIncome, "0", "300"),
	)

	if items := buildClassifiedItems([]*models.LedgerTransaction{accrued}, nil, nil, models.CashflowBasisCash); len(items) != 0 {
		t.Fatalf("cash basis must not count accrued rent, got %d items", len(items))
	}

	items := buildClassifiedItems([]*models.LedgerTransaction{accrued}, nil, nil, models.CashflowBasisAccrual)
	if len(items) != 1 {
		t.Fatalf("accrual basis should count accrued rent, got %d items", len(items))
	}
	if items[0].Category != CategoryRent || !items[0].Amount.Equal(dec("300")) {
		t.Fatalf("unexpected accrual item %+v", items[0])
	}
	if items[0].BucketDate.Month() != time.April {
		t.Fatalf("accrual item buckets by ledger date, got %s", items[0].BucketDate)
	}
}

func TestBuildClassifiedItems_DepositReturnBucketsByOwnDate(t *testing.T) {
	// Security deposit goes back to the tenant in November. The original
	// deposit payment is linked and a month older, but deposit movements
	// always bucket by their own ledger date.
	refund := txn(200, day(2025, time.November, 30), "deposit refund - room 8",
		ln("2028", "Security Deposits Held", models.AccountMainTypeLiability, "400", "0"),
		ln("1000", "CBZ Bank", models.AccountMainTypeAsset, "0", "400"),
	)
	refund.PaymentId = 70

	payments := []*models.Payment{
		{ID: 70, PaymentDate: day(2025, time.October, 28), TotalAmount: dec("400"), Status: models.PaymentStatusConfirmed},
	}

	items := buildClassifiedItems([]*models.LedgerTransaction{refund}, payments, nil, models.CashflowBasisCash)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Direction != FlowOutflow {
		t.Fatalf("deposit return must be an outflow, got %s", item.Direction)
	}
	if !item.Amount.Equal(dec("400")) {
		t.Fatalf("expected 400, got %s", item.Amount)
	}
	if item.BucketDate.Month() != time.November {
		t.Fatalf("deposit return buckets by its own date, got %s", item.BucketDate)
	}
}

func TestBuildClassifiedItems_DepositReturnNeverConsumesExpense(t *testing.T) {
	// A same-day, same-amount expense record would normally proximity-match
	// the outflow. A deposit refund settles a liability, not an expense, so
	// the record survives into the leftover pass.
	refund := txn(201, day(2025, time.November, 30), "deposit refund - room 8",
		ln("2028", "Security Deposits Held", models.AccountMainTypeLiability, "400", "0"),
		ln("1000", "CBZ Bank", models.AccountMainTypeAsset, "0", "400"),
	)
	expenses := []*models.Expense{
		{ID: 9, Amount: dec("400"), ExpenseDate: day(2025, time.November, 30), Description: "garden maintenance", PaymentStatus: models.ExpensePaymentStatusPaid},
	}

	items := buildClassifiedItems([]*models.LedgerTransaction{refund}, nil, expenses, models.CashflowBasisCash)
	if len(items) != 2 {
		t.Fatalf("expected refund plus the untouched expense, got %d items", len(items))
	}
	if items[0].ExpenseId != 0 {
		t.Fatalf("refund must not claim the expense record, got expense id %d", items[0].ExpenseId)
	}
	if items[1].ExpenseId != 9 || !items[1].Amount.Equal(dec("400")) {
		t.Fatalf("unexpected leftover expense item %+v", items[1])
	}
}

func TestStatementBucketAddressing(t *testing.T) {
	aug := newMonthlyBucket(day(2025, time.August, 1))
	sep := newMonthlyBucket(day(2025, time.September, 1))
	statement := &CashFlowStatement{
		MonthlyBreakdown: map[string]*MonthlyBucket{
			"2025-08": aug,
			"2025-09": sep,
		},
	}

	if got := statement.Bucket("2025-08"); got != aug {
		t.Fatalf("key addressing failed")
	}
	if got := statement.Bucket("september"); got != sep {
		t.Fatalf("month-name addressing failed")
	}
	if got := statement.Bucket("2025-10"); got != nil {
		t.Fatalf("missing month should be nil, got %+v", got)
	}
}
