package pantilt

import (
	"errors"
	"fmt"
)

// Domain errors for the tracking rig.
var (
	// ErrLinkNotFound indicates the actuator link could not be opened at startup.
	ErrLinkNotFound = errors.New("pantilt: actuator link not found")

	// ErrUnexpectedSplineEnd indicates a spline finished while the mode had no
	// transition rule for it. The mode/trajectory invariant is broken.
	ErrUnexpectedSplineEnd = errors.New("pantilt: unexpected end of motion")

	// ErrInvalidFeedback indicates a feedback sample carried NaN or Inf.
	ErrInvalidFeedback = errors.New("pantilt: invalid feedback (NaN or Inf detected)")

	// ErrQueueFull indicates a command token was dropped by a full queue.
	ErrQueueFull = errors.New("pantilt: command queue full")
)

// TickError wraps an error with control-loop context.
type TickError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
