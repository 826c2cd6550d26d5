package snapshot

import "errors"

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid snapshot magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrBadGeometry        = errors.New("snapshot record geometry does not match dataset")
	ErrTrailingData       = errors.New("snapshot has trailing data")
)
