package planner

import "github.com/pkg/errors"

var (
	errMoveNonPositiveTime = errors.New("aline: move time must be positive")
	errShortLineNoConverge = errors.New("aline: short-line velocity reduction did not converge")
	errArcNonRealCenter    = errors.New("arc: non-real center (NaN), bad radius specification")
)
