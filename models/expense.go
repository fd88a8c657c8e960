package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
	"github.com/shopspring/decimal"
)

// Expense is the denormalized expense record kept alongside the ledger. The
// same outflow usually also exists as a ledger transaction; the statement
// engine must count it exactly once (see reports dedup context).
type Expense struct {
	ID              int                  `gorm:"primary_key" json:"id"`
	BusinessId      string               `gorm:"index;not null" json:"business_id"`
	ExpenseNumber   string               `gorm:"size:255" json:"expense_number"`
	ReferenceNumber string               `gorm:"size:255;index" json:"reference_number"`
	ExpenseDate     time.Time            `gorm:"index;not null" json:"expense_date"`
	Amount          decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Category        string               `gorm:"size:100" json:"category"`
	PaymentStatus   ExpensePaymentStatus `gorm:"type:enum('Paid','Unpaid');default:'Unpaid';index;not null" json:"payment_status"`
	ResidenceId     int                  `gorm:"index" json:"residence_id"`
	Description     string               `gorm:"size:500" json:"description"`
	// SourceTransactionId links back to the ledger transaction this record was
	// denormalized from, when the importer knew it.
	SourceTransactionId int       `gorm:"index" json:"source_transaction_id"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func FindExpenses(ctx context.Context, fromDate time.Time, toDate time.Time, residenceId *int) ([]*Expense, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Where("business_id = ?", businessId).
		Where("expense_date BETWEEN ? AND ?", fromDate, toDate).
		Where("payment_status = ?", ExpensePaymentStatusPaid)
	if residenceId != nil && *residenceId > 0 {
		dbCtx = dbCtx.Where("residence_id = ?", *residenceId)
	}

	var results []*Expense
	if err := dbCtx.Order("expense_date").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
