package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/restaurant-orders/internal/authz"
)

var ErrInvalidStock = errors.New("stock must be zero or positive")

type Service struct {
	Repo *Repo
}

func (s *Service) Menu(ctx context.Context, branchID int64) ([]MenuSection, error) {
	return s.Repo.ListMenu(ctx, branchID)
}

// SetStock overwrites a product's stock. This is the administrative restock
// path; checkouts only ever decrement.
func (s *Service) SetStock(ctx context.Context, caller authz.Context, productID int64, stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	branchID, businessID, err := s.Repo.productScope(ctx, productID)
	if err != nil {
		return err
	}
	if !authz.CanActOnBranch(caller, branchID, businessID) {
		return authz.ErrForbidden
	}
	if err := s.Repo.setStock(ctx, productID, stock); err != nil {
		return fmt.Errorf("set stock of product %d: %w", productID, err)
	}
	return nil
}
