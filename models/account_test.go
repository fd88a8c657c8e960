package models

import "testing"

func TestIsCashAccount(t *testing.T) {
	cases := []struct {
		code     string
		name     string
		expected bool
	}{
		{"1000", "CBZ Bank", true},
		{"1019", "EcoCash Float", true},
		{"1050", "Vault", true},
		{"1008", "Rent Clearing", false},
		{"1009", "Deposit Clearing", false},
		{"1020", "Prepayments", false},
		{"1200", "Accounts Receivable", false},
		{"", "Petty Cash", true},
		{"9999", "Mukuru Wallet", true},
		{"2026", "Tenant Security Deposits", false},
	}
	for _, tc := range cases {
		if got := IsCashAccount(tc.code, tc.name); got != tc.expected {
			t.Fatalf("IsCashAccount(%q, %q) = %v, expected %v", tc.code, tc.name, got, tc.expected)
		}
	}
}

func TestIsDepositAccount(t *testing.T) {
	cases := []struct {
		code     string
		name     string
		expected bool
	}{
		{"2026", "Tenant Security Deposits", true},
		{"2029", "Deposits Held", true},
		{"2100", "Security Deposits Payable", true},
		{"2100", "Accounts Payable", false},
		{"4003", "Deposit Income", false},
	}
	for _, tc := range cases {
		if got := IsDepositAccount(tc.code, tc.name); got != tc.expected {
			t.Fatalf("IsDepositAccount(%q, %q) = %v, expected %v", tc.code, tc.name, got, tc.expected)
		}
	}
}

func TestFixedAssetAndEquityRanges(t *testing.T) {
	if !IsFixedAssetAccount("1510") || IsFixedAssetAccount("1499") || IsFixedAssetAccount("2000") {
		t.Fatalf("fixed asset range check failed")
	}
	if !IsEquityAccount("3100") || IsEquityAccount("2999") || IsEquityAccount("4000") {
		t.Fatalf("equity range check failed")
	}
}
