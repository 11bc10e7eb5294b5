package numbering

import (
	"fmt"
	"time"
)

// Source lists the invoice numbers already durably recorded.
// A store that does not exist yet returns an empty list.
type Source interface {
	InvoiceNumbers() ([]string, error)
}

// Allocator derives the next invoice number from a Source. It holds no state:
// a number is only consumed once its record is appended to the source.
type Allocator struct {
	source Source
	now    func() time.Time
}

// NewAllocator creates an allocator. now defaults to time.Now.
func NewAllocator(source Source, now func() time.Time) *Allocator {
	if now == nil {
		now = time.Now
	}
	return &Allocator{source: source, now: now}
}

// Next returns the number the next invoice must carry
func (a *Allocator) Next() (Number, error) {
	year := a.now().Year()

	numbers, err := a.source.InvoiceNumbers()
	if err != nil {
		return Number{}, fmt.Errorf("failed to read recorded invoice numbers: %w", err)
	}

	highest, ok, err := Max(numbers)
	if err != nil {
		return Number{}, err
	}
	if !ok {
		return First(year), nil
	}

	switch {
	case highest.Year > year:
		return Number{}, fmt.Errorf("%w: %s in %d", ErrFutureYear, highest, year)
	case highest.Year < year:
		return First(year), nil
	default:
		return highest.Next()
	}
}

// CheckCandidate rejects a number already present in existing or lower than
// the highest existing number of its year.
func CheckCandidate(existing []string, candidate Number) error {
	for _, raw := range existing {
		n, err := Parse(raw)
		if err != nil {
			return err
		}
		if n == candidate {
			return fmt.Errorf("%w: %s", ErrDuplicateNumber, candidate)
		}
		if n.Year == candidate.Year && candidate.Less(n) {
			return fmt.Errorf("%w: %s after %s", ErrNotIncreasing, candidate, n)
		}
	}
	return nil
}

// Issue is one inconsistency found by Verify
type Issue struct {
	Row    int // 1-based data row
	Number string
	Err    error
}

// Verify checks numbers in insertion order: every number well formed, unique,
// and increasing within its year.
func Verify(numbers []string) []Issue {
	var issues []Issue
	seen := make(map[Number]int, len(numbers))
	lastOfYear := make(map[int]Number)

	for i, raw := range numbers {
		row := i + 1
		n, err := Parse(raw)
		if err != nil {
			issues = append(issues, Issue{Row: row, Number: raw, Err: err})
			continue
		}
		if first, dup := seen[n]; dup {
			issues = append(issues, Issue{Row: row, Number: raw, Err: fmt.Errorf("%w (first seen on row %d)", ErrDuplicateNumber, first)})
			continue
		}
		seen[n] = row

		if last, ok := lastOfYear[n.Year]; ok && n.Less(last) {
			issues = append(issues, Issue{Row: row, Number: raw, Err: fmt.Errorf("%w: %s after %s", ErrNotIncreasing, n, last)})
		} else {
			lastOfYear[n.Year] = n
		}
	}
	return issues
}
