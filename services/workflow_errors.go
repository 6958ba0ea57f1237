package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the workflow engine.
var (
	// ErrApplicationNotFound is returned when the requested application
	// does not exist.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrConcurrentModification is returned when a transition loses the
	// optimistic-concurrency race and cannot be absorbed as a no-op. The
	// caller should reload and retry.
	ErrConcurrentModification = errors.New("application was modified concurrently")

	// ErrDuplicatePayment is returned when a payment confirmation arrives
	// for an unknown or already-settled milestone. Treated as a no-op by
	// callers honoring idempotent gateway retries.
	ErrDuplicatePayment = errors.New("payment milestone already settled or unknown")
)

// IllegalTransitionError rejects a requested edge that is not in the
// transition table. No state change occurs.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// PaymentRequiredError rejects a payment-gated edge whose milestone is not
// confirmed. Kind tells the caller which fee blocks the transition.
type PaymentRequiredError struct {
	From Status
	To   Status
	Kind MilestoneKind
}

func (e *PaymentRequiredError) Error() string {
	return fmt.Sprintf("transition from %s to %s requires a confirmed %s payment", e.From, e.To, e.Kind)
}

// StorageError wraps a persistence failure. The whole transition attempt is
// rolled back; nothing is partially committed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
