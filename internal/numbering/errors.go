package numbering

import "errors"

var (
	ErrMalformedNumber   = errors.New("invoice number is not 8 digits")
	ErrFutureYear        = errors.New("highest invoice number belongs to a future year")
	ErrSequenceExhausted = errors.New("invoice sequence exhausted for the year")
	ErrDuplicateNumber   = errors.New("invoice number already recorded")
	ErrNotIncreasing     = errors.New("invoice number does not follow the year's highest number")
)
