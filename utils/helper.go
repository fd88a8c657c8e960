package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
)

const DefaultTimezone = "Africa/Harare"

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]bool)
	result := []T{}
	for _, v := range slice {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	return dec, nil
}

// RoundMoney rounds to statement precision (2dp). Bucket arithmetic stays exact;
// rounding happens only when amounts are assembled into the outgoing statement.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MonthKey formats a date as "YYYY-MM" in the statement's addressing scheme.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthName is the lower-case month-name addressing scheme ("january" ...).
// Downstream consumers use either this or MonthKey, so both are supported.
func MonthName(t time.Time) string {
	return strings.ToLower(t.Month().String())
}

// ParseMonthKey parses "YYYY-MM" into the first instant of that month (UTC).
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(key))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q", key)
	}
	return t, nil
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// SameMonth reports whether two dates fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func ConvertToDate(t time.Time, timezone string) (time.Time, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return t, err
	}
	localTime := t.In(location)
	dateOnly := time.Date(localTime.Year(), localTime.Month(), localTime.Day(), 0, 0, 0, 0, location)
	return dateOnly, nil
}

// ReportLock serialises expensive statement rebuilds per business so concurrent
// requests for an expired cache entry don't all hit the database at once.
func ReportLock(ctx context.Context, businessId string, reportName string) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		// No redis means no stampede protection; the rebuild itself stays correct.
		return nil, nil
	}
	lockKey := fmt.Sprintf("ReportLock:%s:%s", reportName, businessId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		return nil, errors.New("could not obtain report lock for business")
	} else if err != nil {
		return nil, err
	}
	return lock, nil
}
