// Package numbering derives year-scoped invoice numbers of the form YYYYSSSS.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	digits  = 8
	maxSeq  = 9999
	minYear = 1000
)

// Number is an invoice number: a 4-digit year followed by a 4-digit sequence
type Number struct {
	Year int
	Seq  int
}

// First returns the opening number of a year
func First(year int) Number {
	return Number{Year: year, Seq: 0}
}

// Parse accepts exactly 8 ASCII digits. Anything else, including a number
// whose leading zeros were dropped by a spreadsheet, is ErrMalformedNumber.
func Parse(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if len(s) != digits {
		return Number{}, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Number{}, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
		}
	}

	year, _ := strconv.Atoi(s[:4])
	seq, _ := strconv.Atoi(s[4:])
	if year < minYear {
		return Number{}, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	return Number{Year: year, Seq: seq}, nil
}

func (n Number) String() string {
	return fmt.Sprintf("%04d%04d", n.Year, n.Seq)
}

// Next returns the following number within the same year
func (n Number) Next() (Number, error) {
	if n.Seq >= maxSeq {
		return Number{}, fmt.Errorf("%w: %d", ErrSequenceExhausted, n.Year)
	}
	return Number{Year: n.Year, Seq: n.Seq + 1}, nil
}

// Less orders numbers numerically
func (n Number) Less(o Number) bool {
	if n.Year != o.Year {
		return n.Year < o.Year
	}
	return n.Seq < o.Seq
}

// Max parses every number and returns the highest. ok is false for an empty list.
func Max(numbers []string) (highest Number, ok bool, err error) {
	for _, raw := range numbers {
		n, err := Parse(raw)
		if err != nil {
			return Number{}, false, err
		}
		if !ok || highest.Less(n) {
			highest = n
			ok = true
		}
	}
	return highest, ok, nil
}
