package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
)

type Account struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"index;not null" json:"business_id"`
	Code       string          `gorm:"index;size:20;not null" json:"code"`
	Name       string          `gorm:"index;size:100;not null" json:"name" validate:"required"`
	MainType   AccountMainType `gorm:"type:enum('Asset','Liability','Equity','Income','Expense');default:'Expense';index;size:10;not null" json:"main_type" validate:"required"`
	IsActive   *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Chart-of-accounts layout:
//
//	1000-1019  cash and cash equivalents (less the clearing sub-range)
//	1050       vault
//	1500-1999  fixed assets
//	2000-2999  liabilities (2026-2029 tenant security deposits)
//	3000-3999  equity
//	4000-4999  income (4001 rent, 4002 admin fee, 4003 deposit, 4004 utilities)
//	5000-5999  expenses
const (
	cashCodeLow  = 1000
	cashCodeHigh = 1019

	fixedAssetCodeLow  = 1500
	fixedAssetCodeHigh = 1999

	liabilityCodeLow  = 2000
	liabilityCodeHigh = 2999

	equityCodeLow  = 3000
	equityCodeHigh = 3999

	AccountCodeRentIncome    = "4001"
	AccountCodeAdminFee      = "4002"
	AccountCodeDepositIncome = "4003"
	AccountCodeUtilityIncome = "4004"
)

// Cash accounts outside the contiguous range.
var knownCashCodes = map[int]bool{
	1050: true, // vault
}

// Clearing accounts sit inside the cash range but are not cash.
var clearingCodes = map[int]bool{
	1008: true,
	1009: true,
}

var depositLiabilityCodes = map[int]bool{
	2026: true,
	2027: true,
	2028: true,
	2029: true,
}

var cashNameKeywords = []string{"cash", "bank", "petty cash", "ecocash", "innbucks", "wallet"}

func parseAccountCode(code string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsCashAccount is the single cash predicate for the whole engine. Classification
// and balance reporting must agree on what "cash" means, so every caller goes
// through here.
func IsCashAccount(code string, name string) bool {
	if n, ok := parseAccountCode(code); ok {
		if clearingCodes[n] {
			return false
		}
		if n >= cashCodeLow && n <= cashCodeHigh {
			return true
		}
		if knownCashCodes[n] {
			return true
		}
	}
	lower := strings.ToLower(name)
	for _, kw := range cashNameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsDepositAccount reports whether an account holds tenant security deposits.
func IsDepositAccount(code string, name string) bool {
	if n, ok := parseAccountCode(code); ok {
		if depositLiabilityCodes[n] {
			return true
		}
		if n >= liabilityCodeLow && n <= liabilityCodeHigh {
			lower := strings.ToLower(name)
			return strings.Contains(lower, "deposit") && strings.Contains(lower, "security")
		}
	}
	return false
}

func IsFixedAssetAccount(code string) bool {
	n, ok := parseAccountCode(code)
	return ok && n >= fixedAssetCodeLow && n <= fixedAssetCodeHigh
}

func IsEquityAccount(code string) bool {
	n, ok := parseAccountCode(code)
	return ok && n >= equityCodeLow && n <= equityCodeHigh
}

func GetAccounts(ctx context.Context, name *string, code *string) ([]*Account, error) {
	db := config.GetDB()
	var results []*Account

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if code != nil && len(*code) > 0 {
		dbCtx = dbCtx.Where("code LIKE ?", "%"+*code+"%")
	}
	err := dbCtx.Order("code").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetCashAccounts returns the chart-of-account entries the cash predicate
// accepts, cached per business.
func GetCashAccounts(ctx context.Context) ([]*Account, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var cashAccounts []*Account
	exists, err := config.GetRedisObject("CashAccounts:"+businessId, &cashAccounts)
	if err != nil {
		return nil, err
	}
	if !exists {
		accounts, err := GetAccounts(ctx, nil, nil)
		if err != nil {
			return nil, err
		}
		for _, acc := range accounts {
			if IsCashAccount(acc.Code, acc.Name) {
				cashAccounts = append(cashAccounts, acc)
			}
		}
		if err := config.SetRedisObject("CashAccounts:"+businessId, &cashAccounts, 0); err != nil {
			return nil, err
		}
	}
	return cashAccounts, nil
}
