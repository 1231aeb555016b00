package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// ParseCents parses a decimal price such as "10", "10.5" or "1,234.56" into cents.
// Negative amounts and more than two fractional digits are rejected.
func ParseCents(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	clean = strings.TrimPrefix(clean, "$")

	if clean == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative %q", ErrInvalidAmount, s)
	}

	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, fmt.Errorf("%w: too many decimal places in %q", ErrInvalidAmount, s)
	}

	return d.Mul(hundred).IntPart(), nil
}

// Format renders cents as a fixed two-decimal string, e.g. 1000 -> "10.00".
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Sum adds the line totals price*quantity.
func Sum(lines ...Line) int64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromInt(l.Cents).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	return total.IntPart()
}

// Line is a priced quantity.
type Line struct {
	Cents    int64
	Quantity int
}
