package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// NativeDecimals is the number of decimals of the ledger native currency.
	NativeDecimals = 18
	// ZeroAddress is the address the contracts use for "nobody".
	ZeroAddress = "0x0000000000000000000000000000000000000000"
)

var addressRegexp = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsValidAddress returns whether addr is a 20-byte 0x-prefixed hex address.
func IsValidAddress(addr string) bool {
	return addressRegexp.MatchString(addr)
}

// IsZeroAddress returns true for the empty or the all-zero address.
func IsZeroAddress(addr string) bool {
	return addr == "" || strings.EqualFold(addr, ZeroAddress)
}

// SameAddress compares two addresses ignoring hex case.
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ParseAmount converts a human readable amount (ie. "1.5") into base units
// with the given number of decimals.
func ParseAmount(s string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	units := d.Shift(decimals)
	if units.IsNegative() || !units.IsInteger() {
		return decimal.Zero, fmt.Errorf(
			"invalid amount %q: must be positive with at most %d decimals", s, decimals,
		)
	}
	return units, nil
}

// FormatAmount is the inverse of ParseAmount.
func FormatAmount(units decimal.Decimal, decimals int32) string {
	return units.Shift(-decimals).String()
}
