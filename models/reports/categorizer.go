package reports

import (
	"strings"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/models"
	"github.com/shopspring/decimal"
)

type FlowDirection string

const (
	FlowInflow  FlowDirection = "inflow"
	FlowOutflow FlowDirection = "outflow"
)

type Activity string

const (
	ActivityOperating Activity = "operating"
	ActivityInvesting Activity = "investing"
	ActivityFinancing Activity = "financing"
)

const (
	CategoryRent            = "rent"
	CategoryAdminFees       = "admin_fees"
	CategoryDeposits        = "deposits"
	CategoryAdvancePayments = "advance_payments"
	CategoryUtilities       = "utilities"
	CategoryOtherIncome     = "other_income"
)

const (
	TaxonomyMaintenance = "maintenance"
	TaxonomyUtilities   = "utilities"
	TaxonomyCleaning    = "cleaning"
	TaxonomySecurity    = "security"
	TaxonomyManagement  = "management"
)

// ClassifiedItem is one counted cash movement: a surviving transaction's cash
// leg with its resolved category, direction and bucket date. Every surviving
// transaction yields exactly one item.
type ClassifiedItem struct {
	TransactionId int
	ExpenseId     int
	Description   string
	// Category is the semantic income category for inflows, and the verbatim
	// transaction description for outflows (expenses keep their own names in
	// the monthly report).
	Category string
	// Taxonomy is the fixed secondary view for outflows.
	Taxonomy   string
	Direction  FlowDirection
	Activity   Activity
	Amount     decimal.Decimal
	BucketDate time.Time
}

// inflowRule is one step of the category resolution order. First match wins;
// the order is the priority.
type inflowRule struct {
	name  string
	match func(in inflowInput) (string, bool)
}

type inflowInput struct {
	txn       *models.LedgerTransaction
	signals   DescriptionSignals
	isAdvance bool
}

var inflowRules = []inflowRule{
	{
		// Deposit receipt: cash debited with a deposit-liability credit leg.
		name: "deposit-credit-line",
		match: func(in inflowInput) (string, bool) {
			for _, line := range in.txn.Lines {
				if line.Credit.IsPositive() && models.IsDepositAccount(line.AccountCode, line.AccountName) {
					return CategoryDeposits, true
				}
			}
			return "", false
		},
	},
	{
		// Admin fee keyword beats the advance override below: admin fees are
		// never re-bucketed as advances.
		name: "admin-keyword",
		match: func(in inflowInput) (string, bool) {
			if in.signals.HasAdminFee {
				return CategoryAdminFees, true
			}
			return "", false
		},
	},
	{
		name: "advance-by-date",
		match: func(in inflowInput) (string, bool) {
			if in.isAdvance {
				return CategoryAdvancePayments, true
			}
			return "", false
		},
	},
	{
		name: "advance-keyword",
		match: func(in inflowInput) (string, bool) {
			if in.signals.HasAdvance {
				return CategoryAdvancePayments, true
			}
			return "", false
		},
	},
	{
		name: "rent-keyword",
		match: func(in inflowInput) (string, bool) {
			if in.signals.HasRent {
				return CategoryRent, true
			}
			return "", false
		},
	},
	{
		name: "deposit-keyword",
		match: func(in inflowInput) (string, bool) {
			if in.signals.HasDeposit {
				return CategoryDeposits, true
			}
			return "", false
		},
	},
	{
		// Fall back to the income account code of the counter leg.
		name: "account-code",
		match: func(in inflowInput) (string, bool) {
			for _, line := range in.txn.Lines {
				if !line.Credit.IsPositive() || line.AccountType != models.AccountMainTypeIncome {
					continue
				}
				switch line.AccountCode {
				case models.AccountCodeRentIncome:
					return CategoryRent, true
				case models.AccountCodeAdminFee:
					return CategoryAdminFees, true
				case models.AccountCodeDepositIncome:
					return CategoryDeposits, true
				case models.AccountCodeUtilityIncome:
					return CategoryUtilities, true
				}
			}
			return "", false
		},
	},
}

// CategorizeInflow resolves the income category for a cash-debit leg. The
// second return is false for unclassified income: policy is to keep it out of
// the statement entirely (logged by the caller), never to mis-report it.
func CategorizeInflow(txn *models.LedgerTransaction, signals DescriptionSignals, isAdvance bool) (string, bool) {
	in := inflowInput{txn: txn, signals: signals, isAdvance: isAdvance}
	for _, rule := range inflowRules {
		if category, ok := rule.match(in); ok {
			return category, true
		}
	}
	return CategoryOtherIncome, false
}

// IsDepositReturn: deposit liability debited, cash credited. The security
// deposit going back to the tenant. Counted as an outflow, not negative income.
func IsDepositReturn(txn *models.LedgerTransaction) bool {
	var depositDebit, cashCredit bool
	for _, line := range txn.Lines {
		if line.Debit.IsPositive() && models.IsDepositAccount(line.AccountCode, line.AccountName) {
			depositDebit = true
		}
		if line.Credit.IsPositive() && models.IsCashAccount(line.AccountCode, line.AccountName) {
			cashCredit = true
		}
	}
	return depositDebit && cashCredit
}

// IsDepositTransaction covers both directions; deposits always bucket by the
// transaction's own date.
func IsDepositTransaction(txn *models.LedgerTransaction) bool {
	for _, line := range txn.Lines {
		if models.IsDepositAccount(line.AccountCode, line.AccountName) &&
			(line.Debit.IsPositive() || line.Credit.IsPositive()) {
			return true
		}
	}
	return false
}

var taxonomyKeywords = []struct {
	taxonomy string
	keywords []string
}{
	{TaxonomyUtilities, []string{"zesa", "electric", "water", "utility", "utilities", "wifi", "internet"}},
	{TaxonomyCleaning, []string{"clean", "laundry", "garbage", "refuse"}},
	{TaxonomySecurity, []string{"security", "guard", "alarm"}},
	{TaxonomyManagement, []string{"management", "salary", "salaries", "wages", "agent", "commission"}},
	{TaxonomyMaintenance, []string{"repair", "maintenance", "plumb", "paint", "fix", "renovat"}},
}

// FixedTaxonomy buckets an outflow description into the fixed expense
// taxonomy. Anything unrecognised is maintenance.
func FixedTaxonomy(description string) string {
	lower := strings.ToLower(description)
	for _, group := range taxonomyKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.taxonomy
			}
		}
	}
	return TaxonomyMaintenance
}

// ActivityFor classifies the transaction into an activity group by its
// non-cash counter legs: fixed-asset legs are investing, equity legs are
// financing, everything else is operating.
func ActivityFor(txn *models.LedgerTransaction) Activity {
	for _, line := range txn.Lines {
		if models.IsCashAccount(line.AccountCode, line.AccountName) {
			continue
		}
		if models.IsFixedAssetAccount(line.AccountCode) {
			return ActivityInvesting
		}
		if models.IsEquityAccount(line.AccountCode) || line.AccountType == models.AccountMainTypeEquity {
			return ActivityFinancing
		}
	}
	return ActivityOperating
}
