package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	BusinessId    string              `gorm:"index;not null" json:"business_id"`
	PaymentNumber string              `gorm:"size:255;index" json:"payment_number"`
	PaymentDate   time.Time           `gorm:"index;not null" json:"payment_date"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	StudentId     int                 `gorm:"index" json:"student_id"`
	ResidenceId   int                 `gorm:"index" json:"residence_id"`
	Status        PaymentStatus       `gorm:"type:enum('Confirmed','Pending','Voided');default:'Pending';index;not null" json:"status"`
	Allocations   []PaymentAllocation `gorm:"foreignKey:PaymentId" json:"allocations"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// PaymentAllocation is the structured monthly breakdown of a payment. Month is
// "YYYY-MM"; a month later than the payment month marks the slice as paid in
// advance.
type PaymentAllocation struct {
	ID              int             `gorm:"primary_key" json:"id"`
	PaymentId       int             `gorm:"index;not null" json:"payment_id"`
	Month           string          `gorm:"size:7;not null" json:"month"`
	AmountAllocated decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_allocated"`
	AllocationType  AllocationType  `gorm:"type:enum('Rent','AdminFee','Deposit','Advance','Utility');default:'Rent'" json:"allocation_type"`
}

func FindPayments(ctx context.Context, fromDate time.Time, toDate time.Time, residenceId *int) ([]*Payment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Preload("Allocations").
		Where("business_id = ?", businessId).
		Where("payment_date BETWEEN ? AND ?", fromDate, toDate).
		Where("status = ?", PaymentStatusConfirmed)
	if residenceId != nil && *residenceId > 0 {
		dbCtx = dbCtx.Where("residence_id = ?", *residenceId)
	}

	var results []*Payment
	if err := dbCtx.Order("payment_date").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
