package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter renders values for display
type Formatter interface {
	Currency(amount decimal.Decimal) string
	Grams(grams decimal.Decimal) string
}

// INR formats rupee amounts with Indian digit grouping (12,34,567.89)
type INR struct{}

// Currency renders amount as ₹ with two decimals
func (INR) Currency(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if amount.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(whole))
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Grams renders a weight with three decimals
func (INR) Grams(grams decimal.Decimal) string {
	return grams.StringFixed(3) + " g"
}

// groupIndian groups the last three digits, then pairs
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(parts, ",") + "," + tail
}
