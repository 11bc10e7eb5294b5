package registration

import "errors"

var (
	ErrFileNotFound    = errors.New("registration file not found")
	ErrSheetNotFound   = errors.New("registration sheet not found")
	ErrMissingColumn   = errors.New("required registration column missing")
	ErrNoRegistrations = errors.New("no registrations found")
	ErrAddressFormat   = errors.New("address must read \"street, city, postcode\"")
)
