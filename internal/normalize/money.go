package normalize

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// MinPlausiblePrice is the amount at or below which a sale is treated as a
// data-entry artifact rather than a market transaction.
var MinPlausiblePrice = decimal.NewFromInt(1000)

var priceStripper = strings.NewReplacer("$", "", ",", "", " ", "")

// ParsePrice converts a portal currency string such as "$150,000" or
// "150000.00" into an amount.
func ParsePrice(s string) (decimal.Decimal, error) {
	cleaned := priceStripper.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty price")
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", s, err)
	}
	return amount, nil
}

// FormatPrice renders an amount as "$" plus a thousands-grouped whole number.
// Halves round to even.
func FormatPrice(amount decimal.Decimal) string {
	whole := amount.RoundBank(0).IntPart()
	if whole < 0 {
		return "-$" + humanize.Comma(-whole)
	}
	return "$" + humanize.Comma(whole)
}
