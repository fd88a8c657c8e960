package config

import (
	"os"
	"strings"
)

// ReportCacheEnabled gates the redis-backed statement cache.
//
// Set via env:
// - ENABLE_REPORT_CACHE=true
func ReportCacheEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// StrictLineValidation makes the transaction fetch fail hard on malformed ledger
// lines instead of logging and skipping them.
//
// Set via env:
// - STRICT_LINE_VALIDATION=true
func StrictLineValidation() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_LINE_VALIDATION")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
