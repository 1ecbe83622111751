package curve

import "errors"

// ErrPrecondition reports invalid input shapes or argument values.
var ErrPrecondition = errors.New("invalid precondition")
