package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountOrZero returns the amount, or zero when it is absent.
func AmountOrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// ParseAmount decodes a stored amount. Empty and non-numeric input is absent.
func ParseAmount(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// IsZeroOrAbsent reports whether an amount was never entered or is zero.
func IsZeroOrAbsent(v decimal.NullDecimal) bool {
	return !v.Valid || v.Decimal.IsZero()
}

// SplitPODURLs splits the comma-joined attachment column.
func SplitPODURLs(joined string) []string {
	var urls []string
	for _, u := range strings.Split(joined, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// JoinPODURLs is the inverse of SplitPODURLs.
func JoinPODURLs(urls []string) string {
	return strings.Join(urls, ",")
}
