package models

import (
	"errors"
	"strconv"
	"time"
)

type AccountMainType string

const (
	AccountMainTypeAsset     AccountMainType = "Asset"
	AccountMainTypeLiability AccountMainType = "Liability"
	AccountMainTypeEquity    AccountMainType = "Equity"
	AccountMainTypeIncome    AccountMainType = "Income"
	AccountMainTypeExpense   AccountMainType = "Expense"
)

type TransactionStatus string

const (
	TransactionStatusPosted   TransactionStatus = "Posted"
	TransactionStatusReversed TransactionStatus = "Reversed"
	TransactionStatusDraft    TransactionStatus = "Draft"
)

type PaymentStatus string

const (
	PaymentStatusConfirmed PaymentStatus = "Confirmed"
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusVoided    PaymentStatus = "Voided"
)

type ExpensePaymentStatus string

const (
	ExpensePaymentStatusPaid   ExpensePaymentStatus = "Paid"
	ExpensePaymentStatusUnpaid ExpensePaymentStatus = "Unpaid"
)

type AllocationType string

const (
	AllocationTypeRent     AllocationType = "Rent"
	AllocationTypeAdminFee AllocationType = "AdminFee"
	AllocationTypeDeposit  AllocationType = "Deposit"
	AllocationTypeAdvance  AllocationType = "Advance"
	AllocationTypeUtility  AllocationType = "Utility"
)

// CashflowBasis selects whether income/expenses are recognised when cash moves
// or when the ledger recognises them.
type CashflowBasis string

const (
	CashflowBasisCash    CashflowBasis = "cash"
	CashflowBasisAccrual CashflowBasis = "accrual"
)

// MyDateString is a date-only value that callers supply in local business time
// and reports convert to the UTC day boundaries before querying.
type MyDateString time.Time

func (t MyDateString) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Time(t).Format("2006-01-02"))), nil
}

func (t *MyDateString) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("MyDateString must be a quoted string")
	}
	parsed, err := time.Parse("2006-01-02", str)
	if err != nil {
		return errors.New("error parsing date")
	}
	*t = MyDateString(parsed)
	return nil
}

func (t *MyDateString) StartOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "Africa/Harare"
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		0, 0, 0, 0,
		location,
	)

	*t = MyDateString(localTimeInZone.In(time.UTC))
	return nil
}

func (t *MyDateString) EndOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "Africa/Harare"
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		23, 59, 59, 999,
		location,
	)

	*t = MyDateString(localTimeInZone.In(time.UTC))
	return nil
}
