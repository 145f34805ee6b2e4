package collision

import "errors"

// ErrPrecondition is returned when an operation is called on input that
// violates its documented precondition (e.g. a contact point for shapes that
// do not overlap).
var ErrPrecondition = errors.New("collision: precondition violated")
