package numbering

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	numbers []string
	err     error
}

func (s stubSource) InvoiceNumbers() ([]string, error) {
	return s.numbers, s.err
}

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.March, 14, 10, 0, 0, 0, time.UTC) }
}

func TestAllocatorNext(t *testing.T) {
	tests := []struct {
		name    string
		numbers []string
		want    string
		wantErr error
	}{
		{name: "empty ledger", numbers: nil, want: "20250000"},
		{name: "increment within year", numbers: []string{"20250000", "20250041", "20250042"}, want: "20250043"},
		{name: "max is not the last row", numbers: []string{"20250042", "20250007"}, want: "20250043"},
		{name: "only previous year rows", numbers: []string{"20240011", "20240012"}, want: "20250000"},
		{name: "previous and current year", numbers: []string{"20240099", "20250003"}, want: "20250004"},
		{name: "leading zeros dropped", numbers: []string{"2025042"}, wantErr: ErrMalformedNumber},
		{name: "numeric cell rendered as float", numbers: []string{"20250042.0"}, wantErr: ErrMalformedNumber},
		{name: "future year", numbers: []string{"20260001"}, wantErr: ErrFutureYear},
		{name: "exhausted", numbers: []string{"20259999"}, wantErr: ErrSequenceExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(stubSource{numbers: tt.numbers}, fixedClock(2025))
			got, err := a.Next()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAllocatorSourceError(t *testing.T) {
	boom := errors.New("disk unplugged")
	a := NewAllocator(stubSource{err: boom}, fixedClock(2025))

	_, err := a.Next()
	assert.ErrorIs(t, err, boom)
}

func TestAllocatorIsStateless(t *testing.T) {
	a := NewAllocator(stubSource{numbers: []string{"20250001"}}, fixedClock(2025))

	first, err := a.Next()
	require.NoError(t, err)
	second, err := a.Next()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParse(t *testing.T) {
	n, err := Parse(" 20250042 ")
	require.NoError(t, err)
	assert.Equal(t, Number{Year: 2025, Seq: 42}, n)
	assert.Equal(t, "20250042", n.String())

	for _, in := range []string{"", "2025", "2025004a", "202500421", "00000001"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrMalformedNumber, in)
	}
}

func TestCheckCandidate(t *testing.T) {
	existing := []string{"20240050", "20250001", "20250002"}

	assert.NoError(t, CheckCandidate(existing, Number{2025, 3}))
	assert.NoError(t, CheckCandidate(existing, Number{2026, 0}))
	assert.ErrorIs(t, CheckCandidate(existing, Number{2025, 2}), ErrDuplicateNumber)
	assert.ErrorIs(t, CheckCandidate(existing, Number{2025, 0}), ErrNotIncreasing)
	assert.ErrorIs(t, CheckCandidate([]string{"bad"}, Number{2025, 0}), ErrMalformedNumber)
}

func TestVerify(t *testing.T) {
	t.Run("clean ledger", func(t *testing.T) {
		assert.Empty(t, Verify([]string{"20240000", "20240001", "20250000", "20250001"}))
	})

	t.Run("reports each problem row", func(t *testing.T) {
		issues := Verify([]string{"20250000", "20250002", "20250001", "20250002", "x"})
		require.Len(t, issues, 3)

		assert.Equal(t, 3, issues[0].Row)
		assert.ErrorIs(t, issues[0].Err, ErrNotIncreasing)
		assert.Equal(t, 4, issues[1].Row)
		assert.ErrorIs(t, issues[1].Err, ErrDuplicateNumber)
		assert.Equal(t, 5, issues[2].Row)
		assert.ErrorIs(t, issues[2].Err, ErrMalformedNumber)
	})
}
