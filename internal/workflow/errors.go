package workflow

import "errors"

var (
	// ErrUnknownStatus is returned for a status string outside the known set.
	ErrUnknownStatus = errors.New("workflow: unknown status")
	// ErrInvalidTransition is returned when the target status is not reachable.
	ErrInvalidTransition = errors.New("workflow: invalid status transition")
	// ErrNotReturnable is returned when an order or item cannot be returned.
	ErrNotReturnable = errors.New("workflow: not returnable")
	// ErrInvalidItems is returned when requested return items do not match the order.
	ErrInvalidItems = errors.New("workflow: invalid return items")
)
