package reports

import (
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
	"github.com/shopspring/decimal"
)

// Shared builders for the engine tests. All DB-free: the pipeline functions
// under test take their inputs as values.

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ln(code, name string, mainType models.AccountMainType, debit, credit string) models.LedgerLine {
	return models.LedgerLine{
		AccountCode: code,
		AccountName: name,
		AccountType: mainType,
		Debit:       dec(debit),
		Credit:      dec(credit),
	}
}

func txn(id int, date time.Time, description string, lines ...models.LedgerLine) *models.LedgerTransaction {
	return &models.LedgerTransaction{
		ID:              id,
		TransactionDate: date,
		Description:     description,
		Status:          models.TransactionStatusPosted,
		Lines:           lines,
	}
}

// rentReceipt is the common shape: cash debited, rent income credited.
func rentReceipt(id int, date time.Time, description, amount string) *models.LedgerTransaction {
	return txn(id, date, description,
		ln("1000", "CBZ Bank", models.AccountMainTypeAsset, amount, "0"),
		ln(models.AccountCodeRentIncome, "Rental Income", models.AccountMainTypeIncome, "0", amount),
	)
}

func cashExpense(id int, date time.Time, description, amount string) *models.LedgerTransaction {
	return txn(id, date, description,
		ln("5001", "General Expenses", models.AccountMainTypeExpense, amount, "0"),
		ln("1001", "Petty Cash", models.AccountMainTypeAsset, "0", amount),
	)
}
