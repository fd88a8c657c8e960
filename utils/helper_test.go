package utils

import (
	"testing"
	"time"
)

func TestMonthKeyRoundTrip(t *testing.T) {
	d := time.Date(2025, time.August, 28, 14, 30, 0, 0, time.UTC)
	key := MonthKey(d)
	if key != "2025-08" {
		t.Fatalf("expected 2025-08, got %s", key)
	}
	parsed, err := ParseMonthKey(key)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Year() != 2025 || parsed.Month() != time.August || parsed.Day() != 1 {
		t.Fatalf("expected first of August 2025, got %s", parsed)
	}
	if _, err := ParseMonthKey("2025-13"); err == nil {
		t.Fatalf("expected error for invalid month")
	}
}

func TestMonthName(t *testing.T) {
	if got := MonthName(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)); got != "february" {
		t.Fatalf("expected february, got %s", got)
	}
}

func TestMonthBoundaries(t *testing.T) {
	d := time.Date(2025, time.February, 14, 9, 0, 0, 0, time.UTC)
	start := StartOfMonth(d)
	if start.Day() != 1 || start.Hour() != 0 {
		t.Fatalf("unexpected month start %s", start)
	}
	end := EndOfMonth(d)
	if end.Day() != 28 || end.Month() != time.February {
		t.Fatalf("unexpected february end %s", end)
	}
	if !SameMonth(start, end) {
		t.Fatalf("start and end must share the month")
	}
	if SameMonth(end, end.Add(time.Nanosecond)) {
		t.Fatalf("first instant of march is a different month")
	}
}

func TestRoundMoney(t *testing.T) {
	d, err := ParseDecimal("123.456")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := RoundMoney(d); got.String() != "123.46" {
		t.Fatalf("expected 123.46, got %s", got)
	}
	if _, err := ParseDecimal("  "); err == nil {
		t.Fatalf("expected error for blank decimal")
	}
}

func TestConvertToDate(t *testing.T) {
	// 23:30 UTC is already the next day in Harare (UTC+2).
	utc := time.Date(2025, time.March, 31, 23, 30, 0, 0, time.UTC)
	local, err := ConvertToDate(utc, "")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if local.Year() != 2025 || local.Month() != time.April || local.Day() != 1 {
		t.Fatalf("expected 2025-04-01 in Harare, got %s", local)
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]string{"a", "b", "a", "c", "b"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected result %v", got)
	}
}
