package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/restaurant-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type Repo struct{ DB postgres.DB }

func (r *Repo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, branch_id, category_id, name, description, price, stock, active
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.BranchID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetBranch(ctx context.Context, id int64) (*Branch, error) {
	var b Branch
	err := r.DB.QueryRow(ctx, `
		SELECT id, business_id, name, delivery_fee, active
		FROM branches WHERE id=$1`, id).
		Scan(&b.ID, &b.BusinessID, &b.Name, &b.DeliveryFee, &b.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListMenu returns the sellable products of an active branch grouped by category.
func (r *Repo) ListMenu(ctx context.Context, branchID int64) ([]MenuSection, error) {
	b, err := r.GetBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if !b.Active {
		return nil, ErrNotFound
	}

	rows, err := r.DB.Query(ctx, `
		SELECT COALESCE(c.name, ''), p.id, p.name, p.description, p.price, p.stock
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.branch_id=$1 AND p.active AND p.stock > 0
		ORDER BY c.name NULLS LAST, p.name`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MenuSection{}
	for rows.Next() {
		var cat string
		var it MenuItem
		if err := rows.Scan(&cat, &it.ID, &it.Name, &it.Description, &it.Price, &it.Stock); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].Category != cat {
			out = append(out, MenuSection{Category: cat})
		}
		out[len(out)-1].Items = append(out[len(out)-1].Items, it)
	}
	return out, rows.Err()
}

// productScope returns the branch and owning business of a product.
func (r *Repo) productScope(ctx context.Context, productID int64) (branchID, businessID int64, err error) {
	err = r.DB.QueryRow(ctx, `
		SELECT p.branch_id, b.business_id
		FROM products p JOIN branches b ON b.id = p.branch_id
		WHERE p.id=$1`, productID).Scan(&branchID, &businessID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	return branchID, businessID, err
}

func (r *Repo) setStock(ctx context.Context, productID int64, stock int) error {
	ct, err := r.DB.Exec(ctx, `UPDATE products SET stock=$2, updated_at=NOW() WHERE id=$1`, productID, stock)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}
