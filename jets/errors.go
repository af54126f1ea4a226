package jets

import "errors"

// Sentinel errors returned (wrapped) by dataset construction and access.
// Match with errors.Is.
var (
	// ErrMissingData indicates neither the gob cache nor the raw csv could
	// be obtained or parsed.
	ErrMissingData = errors.New("jets: missing dataset")

	// ErrConfiguration indicates mutually inconsistent constructor options.
	ErrConfiguration = errors.New("jets: invalid configuration")

	// ErrShape indicates raw data that does not reshape cleanly into the
	// fixed [jets, 30, 4] layout.
	ErrShape = errors.New("jets: bad raw data shape")

	// ErrIndex indicates a record index outside [0, Len()).
	ErrIndex = errors.New("jets: index out of range")
)
