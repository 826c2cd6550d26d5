package mnist

import "errors"

// Common errors.
var (
	ErrInvalidNDim = errors.New("invalid ndim for MNIST dataset")
	ErrNoLabels    = errors.New("split was loaded without labels")
)
