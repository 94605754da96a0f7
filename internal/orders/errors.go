package orders

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid checkout request")
	ErrInvalidItem       = errors.New("invalid item")
	ErrInvalidBranch     = errors.New("branch not available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrTransaction       = errors.New("order transaction failed")
)

// InsufficientStockError reports a line that asks for more than the product has left.
type InsufficientStockError struct {
	ProductID int64
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: only %d left, %d requested", e.Product, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// IsClientError reports whether err was caused by the checkout or status input.
func IsClientError(err error) bool {
	for _, target := range []error{ErrInvalidRequest, ErrInvalidItem, ErrInvalidBranch, ErrInsufficientStock, ErrInvalidStatus, ErrInvalidTransition} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func txFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransaction, op, err)
}
