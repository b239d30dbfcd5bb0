package ledger

import (
	"context"
	"errors"
	"fmt"

	inventoryRepo "vitastore.GO/model/repository/inventory"
)

var (
	ErrNotFound          = inventoryRepo.ErrNotFound
	ErrInvalidArgument   = inventoryRepo.ErrInvalidArgument
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	// ErrDependency marks failures of the store underneath the ledger.
	ErrDependency = errors.New("ledger: dependency failure")
)

// InsufficientStockError reports a stock-out (or IN reversal) larger than
// what the item holds. It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	ItemID    uint
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d", e.ItemName, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// LineError ties a batch failure to the offending line (0-based).
type LineError struct {
	Index int
	Err   error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Index+1, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// classify leaves domain errors alone and tags everything else as a dependency failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrDependency, op, err)
}
