package earnings

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWorkerNotFound is returned when a referenced worker doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrRecordExists is returned when an insert-only write finds an
	// existing record for the date. Expected during races; callers treat
	// it as success of the other writer.
	ErrRecordExists = errors.New("attendance record already exists")

	// ErrCursorRegression is returned when a write would move the
	// reconciliation cursor backward.
	ErrCursorRegression = errors.New("reconciliation cursor cannot move backward")

	// ErrInvalidStatus is returned for an unknown attendance status on an
	// explicit edit. Legacy reads are normalized, never rejected.
	ErrInvalidStatus = errors.New("invalid attendance status")

	// ErrPersistence wraps storage-level failures during reconciliation or
	// commit-on-completion. Recoverable: the cursor is not advanced, so
	// the next session retries.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError carries the failed operation for logging.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return ErrPersistence }

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidStatus)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound)
}
