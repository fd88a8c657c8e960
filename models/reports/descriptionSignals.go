package reports

import (
	"regexp"
	"strings"
	"time"
)

// DescriptionSignals is the structured view of a transaction description.
// Keyword matching happens once, here; the rest of the engine consumes
// booleans so each rule stays independently testable.
type DescriptionSignals struct {
	HasAdjustmentKeyword bool
	HasTransferKeyword   bool
	HasLateFee           bool
	HasAdminFee          bool
	HasAdvance           bool
	HasRent              bool
	HasDeposit           bool
	// ForMonth is the parsed "for YYYY-MM" token, when present. Used as the
	// advance-detection fallback for payments without structured allocations.
	ForMonth *time.Time
}

var adjustmentKeywords = []string{
	"opening balance",
	"balance adjustment",
	"clearing account",
	"journal entry",
	"internal transfer",
	"reclassification",
	"take-on balances",
}

var transferKeywords = []string{
	"petty cash",
	"vault",
	"transfer to",
	"transfer from",
	"cash allocation",
}

var forMonthPattern = regexp.MustCompile(`for\s+(\d{4}-(?:0[1-9]|1[0-2]))`)

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func ExtractDescriptionSignals(description string) DescriptionSignals {
	lower := strings.ToLower(description)

	signals := DescriptionSignals{
		HasAdjustmentKeyword: containsAny(lower, adjustmentKeywords),
		HasTransferKeyword:   containsAny(lower, transferKeywords),
		HasLateFee:           strings.Contains(lower, "late") && (strings.Contains(lower, "fee") || strings.Contains(lower, "payment")),
		HasAdminFee:          strings.Contains(lower, "admin"),
		HasAdvance:           strings.Contains(lower, "advance"),
		HasRent:              strings.Contains(lower, "rent"),
		HasDeposit:           strings.Contains(lower, "deposit"),
	}

	if m := forMonthPattern.FindStringSubmatch(lower); m != nil {
		if parsed, err := time.Parse("2006-01", m[1]); err == nil {
			signals.ForMonth = &parsed
		}
	}

	return signals
}
