package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerTransaction struct {
	ID                int               `gorm:"primary_key" json:"id"`
	BusinessId        string            `gorm:"index;not null;index:idx_lt_biz_date,priority:1" json:"business_id"`
	TransactionNumber string            `gorm:"size:255" json:"transaction_number"`
	ReferenceNumber   string            `gorm:"size:255;index" json:"reference_number"`
	TransactionDate   time.Time         `gorm:"index;not null;index:idx_lt_biz_date,priority:2" json:"transaction_date"`
	Description       string            `gorm:"size:500" json:"description"`
	Status            TransactionStatus `gorm:"type:enum('Posted','Reversed','Draft');default:'Draft';index;not null" json:"status"`
	Source            string            `gorm:"size:100" json:"source"`
	ResidenceId       int               `gorm:"index" json:"residence_id"`
	StudentId         int               `gorm:"index" json:"student_id"`
	// PaymentId is the explicit link to the payment that produced this
	// transaction; zero when the importer could not resolve one.
	PaymentId int          `gorm:"index" json:"payment_id"`
	Lines     []LedgerLine `gorm:"foreignKey:TransactionId" json:"lines"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type LedgerLine struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	TransactionId int             `gorm:"index;not null" json:"transaction_id"`
	AccountCode   string          `gorm:"size:20;index;not null" json:"account_code"`
	AccountName   string          `gorm:"size:100" json:"account_name"`
	AccountType   AccountMainType `gorm:"size:10" json:"account_type"`
	Debit         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit"`
	Credit        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// Ledger immutability guardrails:
// - ledger_lines are append-only (no updates/deletes).
// - ledger_transactions are never deleted; corrections post a reversal.

func (l *LedgerLine) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("immutable ledger: ledger_lines cannot be updated")
}

func (l *LedgerLine) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: ledger_lines cannot be deleted")
}

func (t *LedgerTransaction) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: ledger_transactions cannot be deleted")
}

// IsBalanced checks the double-entry invariant. It is enforced on the write
// path; the statement engine only ever asserts it, never repairs it.
func (t *LedgerTransaction) IsBalanced() bool {
	var debit, credit decimal.Decimal
	for _, line := range t.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit.Equal(credit)
}

// CashLines returns the lines posted against cash accounts.
func (t *LedgerTransaction) CashLines() []LedgerLine {
	var out []LedgerLine
	for _, line := range t.Lines {
		if IsCashAccount(line.AccountCode, line.AccountName) {
			out = append(out, line)
		}
	}
	return out
}

func (t *LedgerTransaction) HasLineOfType(mainType AccountMainType) bool {
	for _, line := range t.Lines {
		if line.AccountType == mainType {
			return true
		}
	}
	return false
}

// validLine rejects the malformed shapes the importer occasionally produces:
// negative amounts, or both sides of a line populated.
func validLine(line LedgerLine) error {
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("line %d: negative amount", line.ID)
	}
	if line.Debit.IsPositive() && line.Credit.IsPositive() {
		return fmt.Errorf("line %d: both debit and credit set", line.ID)
	}
	if line.AccountCode == "" {
		return fmt.Errorf("line %d: missing account code", line.ID)
	}
	return nil
}

// FindTransactions fetches posted transactions for the period, with lines
// normalized at this boundary so downstream code never branches on shape.
// Malformed lines are logged and dropped (or fail the fetch under
// STRICT_LINE_VALIDATION).
func FindTransactions(ctx context.Context, fromDate time.Time, toDate time.Time, residenceId *int) ([]*LedgerTransaction, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	logger := config.GetLogger()

	dbCtx := db.WithContext(ctx).
		Preload("Lines").
		Where("business_id = ?", businessId).
		Where("transaction_date BETWEEN ? AND ?", fromDate, toDate).
		Where("status NOT IN ?", []TransactionStatus{TransactionStatusReversed, TransactionStatusDraft})
	if residenceId != nil && *residenceId > 0 {
		dbCtx = dbCtx.Where("residence_id = ?", *residenceId)
	}

	var results []*LedgerTransaction
	if err := dbCtx.Order("transaction_date").Find(&results).Error; err != nil {
		return nil, err
	}

	strict := config.StrictLineValidation()
	for _, txn := range results {
		kept := txn.Lines[:0]
		for _, line := range txn.Lines {
			if err := validLine(line); err != nil {
				if strict {
					return nil, fmt.Errorf("transaction %d: %w", txn.ID, err)
				}
				config.LogError(logger, "models", "FindTransactions", "dropping malformed ledger line", txn.ID, err)
				continue
			}
			kept = append(kept, line)
		}
		txn.Lines = kept

		if !txn.IsBalanced() {
			if strict {
				return nil, fmt.Errorf("transaction %d: debits and credits do not balance", txn.ID)
			}
			config.LogWarn(logger, "models", "FindTransactions", "unbalanced transaction in period", map[string]any{
				"transaction_id": txn.ID,
			})
		}
	}
	return results, nil
}
