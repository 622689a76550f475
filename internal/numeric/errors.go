package numeric

import "errors"

var (
	ErrTooFewGroups       = errors.New("at least two groups are required")
	ErrTooFewObservations = errors.New("too few observations")
	ErrDegenerate         = errors.New("degenerate input")
	ErrDimension          = errors.New("dimension mismatch")
)
