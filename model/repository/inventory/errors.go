package inventory

import "errors"

var (
	// ErrNotFound is returned when an item or transaction id does not resolve.
	ErrNotFound = errors.New("inventory: not found")
	// ErrInvalidArgument is returned for field values the catalog refuses to store.
	ErrInvalidArgument = errors.New("inventory: invalid argument")
)
