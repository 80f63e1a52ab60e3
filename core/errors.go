package core

import "errors"

// ErrInvalidInput marks a geodetic point with out-of-range components.
// It indicates a caller contract violation and is never retried.
var ErrInvalidInput = errors.New("invalid geodetic input")

// ErrDegenerateInput marks a cartesian point too close to Earth's centre
// for latitude and longitude to be defined.
var ErrDegenerateInput = errors.New("degenerate cartesian input")
