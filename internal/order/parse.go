package order

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseQuantity parses a positive integer quantity
func ParseQuantity(input string) (int, error) {
	s := strings.TrimSpace(input)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, &InvalidQuantityError{Input: input}
	}
	return n, nil
}

// ParsePrice keeps only digits and the first decimal point of the input.
// An empty result is a zero price, never an error.
func ParsePrice(input string) decimal.Decimal {
	var b strings.Builder
	seenPoint := false
	for _, r := range input {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}

	s := strings.TrimSuffix(b.String(), ".")
	if s == "" || s == "." {
		return decimal.Zero
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount with exactly two decimals, rounding half away from zero
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
