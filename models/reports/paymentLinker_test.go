package reports

import (
	"testing"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
)

func TestLinkPayment_ExplicitIdWins(t *testing.T) {
	receipt := rentReceipt(10, day(2025, time.September, 2), "rent - t mukamuri", "300")
	receipt.PaymentId = 55

	payments := []*models.Payment{
		{ID: 54, PaymentNumber: "PAY-0054", TotalAmount: dec("300"), PaymentDate: day(2025, time.September, 1)},
		{ID: 55, PaymentNumber: "PAY-0055", TotalAmount: dec("300"), PaymentDate: day(2025, time.August, 28)},
	}

	linked := LinkPayment(receipt, payments)
	if linked == nil || linked.ID != 55 {
		t.Fatalf("expected explicit payment 55, got %+v", linked)
	}
}

func TestLinkPayment_ReferenceNumber(t *testing.T) {
	receipt := rentReceipt(11, day(2025, time.September, 2), "rent", "300")
	receipt.ReferenceNumber = "PAY-0054"

	payments := []*models.Payment{
		{ID: 54, PaymentNumber: "PAY-0054", TotalAmount: dec("120"), PaymentDate: day(2025, time.September, 1)},
	}

	linked := LinkPayment(receipt, payments)
	if linked == nil || linked.ID != 54 {
		t.Fatalf("expected payment 54 via reference, got %+v", linked)
	}
}

func TestLinkPayment_StudentAndAmount(t *testing.T) {
	receipt := rentReceipt(12, day(2025, time.September, 2), "rent", "300")
	receipt.StudentId = 7

	payments := []*models.Payment{
		{ID: 60, StudentId: 9, TotalAmount: dec("300"), PaymentDate: day(2025, time.September, 1)},
		{ID: 61, StudentId: 7, TotalAmount: dec("300.005"), PaymentDate: day(2025, time.August, 28)},
	}

	linked := LinkPayment(receipt, payments)
	if linked == nil || linked.ID != 61 {
		t.Fatalf("expected student match within tolerance, got %+v", linked)
	}
}

func TestLinkPayment_AmountWithinWindow(t *testing.T) {
	receipt := rentReceipt(13, day(2025, time.September, 2), "rent", "300")

	inside := &models.Payment{ID: 70, TotalAmount: dec("300"), PaymentDate: day(2025, time.August, 10)}
	outside := &models.Payment{ID: 71, TotalAmount: dec("300"), PaymentDate: day(2025, time.July, 1)}

	if linked := LinkPayment(receipt, []*models.Payment{outside, inside}); linked == nil || linked.ID != 70 {
		t.Fatalf("expected in-window payment 70, got %+v", linked)
	}
	if linked := LinkPayment(receipt, []*models.Payment{outside}); linked != nil {
		t.Fatalf("payment outside the 30-day window should not link, got %+v", linked)
	}
}

func TestLinkPayment_NoMatchIsNil(t *testing.T) {
	receipt := rentReceipt(14, day(2025, time.September, 2), "rent", "300")
	if linked := LinkPayment(receipt, nil); linked != nil {
		t.Fatalf("expected nil, got %+v", linked)
	}
}

func TestEffectiveDate_LinkedPaymentPullsDate(t *testing.T) {
	receipt := rentReceipt(15, day(2025, time.September, 2), "rent", "300")
	linked := &models.Payment{ID: 80, PaymentDate: day(2025, time.August, 28)}

	got := EffectiveDate(receipt, linked, false)
	if !got.Equal(day(2025, time.August, 28)) {
		t.Fatalf("expected payment date, got %s", got)
	}
}

func TestEffectiveDate_DepositsKeepTransactionDate(t *testing.T) {
	deposit := txn(16, day(2025, time.September, 2), "security deposit - room 3",
		ln("1000", "CBZ Bank", models.AccountMainTypeAsset, "150", "0"),
		ln("2026", "Tenant Security Deposits", models.AccountMainTypeLiability, "0", "150"),
	)
	linked := &models.Payment{ID: 81, PaymentDate: day(2025, time.August, 28)}

	got := EffectiveDate(deposit, linked, true)
	if !got.Equal(day(2025, time.September, 2)) {
		t.Fatalf("deposit must bucket by its own date, got %s", got)
	}
}

func TestAdvanceMonth_StructuredAllocations(t *testing.T) {
	effective := day(2025, time.August, 28)

	advance := &models.Payment{
		ID: 90,
		Allocations: []models.PaymentAllocation{
			{Month: "2025-09", AmountAllocated: dec("300"), AllocationType: models.AllocationTypeRent},
		},
	}
	month, ok := AdvanceMonth(advance, DescriptionSignals{}, effective)
	if !ok {
		t.Fatalf("allocation for a later month should mark an advance")
	}
	if month.Month() != time.September || month.Year() != 2025 {
		t.Fatalf("expected 2025-09, got %s", month)
	}

	current := &models.Payment{
		ID: 91,
		Allocations: []models.PaymentAllocation{
			{Month: "2025-08", AmountAllocated: dec("300"), AllocationType: models.AllocationTypeRent},
		},
	}
	if _, ok := AdvanceMonth(current, DescriptionSignals{}, effective); ok {
		t.Fatalf("current-month allocation is not an advance")
	}
}

func TestAdvanceMonth_AllocationsSuppressDescriptionFallback(t *testing.T) {
	// Structured allocations exist and name the current month; the stale
	// "for 2025-09" token in the description must not override them.
	effective := day(2025, time.August, 28)
	forMonth := day(2025, time.September, 1)
	signals := DescriptionSignals{ForMonth: &forMonth}

	p := &models.Payment{
		ID: 92,
		Allocations: []models.PaymentAllocation{
			{Month: "2025-08", AmountAllocated: dec("300"), AllocationType: models.AllocationTypeRent},
		},
	}
	if _, ok := AdvanceMonth(p, signals, effective); ok {
		t.Fatalf("description fallback must not override structured allocations")
	}
}

func TestAdvanceMonth_DescriptionFallback(t *testing.T) {
	effective := day(2025, time.August, 28)
	signals := ExtractDescriptionSignals("rent for 2025-09 - room 11")
	if signals.ForMonth == nil {
		t.Fatalf("for-month token not extracted")
	}

	month, ok := AdvanceMonth(nil, signals, effective)
	if !ok {
		t.Fatalf("for-month token in a later month should mark an advance")
	}
	if month.Month() != time.September {
		t.Fatalf("expected September, got %s", month)
	}
}
