package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
	"github.com/shopspring/decimal"
)

// AccountDailyBalance is the per-account, per-day rollup maintained by the
// posting path. The statement engine reads it for opening balances and
// month-end cash snapshots.
type AccountDailyBalance struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"index;not null;index:idx_adb_biz_date,priority:1" json:"business_id"`
	AccountCode     string          `gorm:"size:20;index;not null" json:"account_code"`
	AccountName     string          `gorm:"size:100" json:"account_name"`
	ResidenceId     int             `gorm:"index" json:"residence_id"`
	TransactionDate time.Time       `gorm:"index;not null;index:idx_adb_biz_date,priority:2" json:"transaction_date"`
	Debit           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit"`
	Credit          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type accountBalanceRow struct {
	AccountCode string
	AccountName string
	Amount      decimal.Decimal
}

// CashBalanceAsOf returns debit-minus-credit per cash account over all activity
// up to and including the given date. The cash predicate is models.IsCashAccount,
// the same one classification uses.
func CashBalanceAsOf(ctx context.Context, asOf time.Time, residenceId *int) (map[string]decimal.Decimal, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()

	sql := `
		SELECT
			account_code,
			account_name,
			COALESCE(SUM(debit) - SUM(credit), 0) AS amount
		FROM
			account_daily_balances
		WHERE
			business_id = ?
			AND transaction_date <= ?
	`
	args := []interface{}{businessId, asOf}
	if residenceId != nil && *residenceId > 0 {
		sql += " AND residence_id = ?"
		args = append(args, *residenceId)
	}
	sql += " GROUP BY account_code, account_name"

	var rows []accountBalanceRow
	if err := db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal)
	for _, row := range rows {
		if !IsCashAccount(row.AccountCode, row.AccountName) {
			continue
		}
		balances[row.AccountCode] = balances[row.AccountCode].Add(row.Amount)
	}
	return balances, nil
}

// TotalCashBalanceAsOf sums CashBalanceAsOf across accounts.
func TotalCashBalanceAsOf(ctx context.Context, asOf time.Time, residenceId *int) (decimal.Decimal, error) {
	balances, err := CashBalanceAsOf(ctx, asOf, residenceId)
	if err != nil {
		return decimal.Zero, err
	}
	var total decimal.Decimal
	for _, amount := range balances {
		total = total.Add(amount)
	}
	return total, nil
}
