// internal/domain/errors.go
package domain

import "errors"

// Error taxonomy shared by all components. Repositories translate driver
// errors into these sentinels so callers can branch with errors.Is.
var (
	// ErrInvalidInput marks a request rejected before any store call
	// (empty required name, missing amount, unparseable date).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidHierarchy marks a taxonomy call missing its required parent.
	ErrInvalidHierarchy = errors.New("invalid taxonomy hierarchy")

	// ErrNotFound marks an edit/delete target that no longer exists.
	ErrNotFound = errors.New("record not found")

	// ErrConflict marks a duplicate-key violation under concurrent creation.
	// The taxonomy resolver recovers from it by re-resolving; it is never
	// surfaced from Ensure.
	ErrConflict = errors.New("duplicate record")

	// ErrStoreUnavailable marks a network/backend failure. The operation is
	// treated as not completed and no partial state is applied.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
