package idx

import "errors"

// Common errors.
var (
	ErrBadMagic       = errors.New("invalid IDX magic")
	ErrBadDimensions  = errors.New("unexpected image dimensions")
	ErrCountMismatch  = errors.New("image and label record counts differ")
	ErrTooManyRecords = errors.New("record count exceeds sanity limit")
)
