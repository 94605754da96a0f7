package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var errStockGuard = errors.New("stock guard rejected decrement")

type lockedProduct struct {
	ID     int64
	Name   string
	Price  decimal.Decimal
	Stock  int
	Active bool
}

// lockProducts takes a row lock on every product of the branch that the
// checkout references. One statement ordered by id, so two checkouts that
// share products always lock them in the same order.
func lockProducts(ctx context.Context, tx pgx.Tx, branchID int64, ids []int64) (map[int64]*lockedProduct, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, price, stock, active
		FROM products
		WHERE branch_id=$1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE`, branchID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]*lockedProduct, len(ids))
	for rows.Next() {
		var p lockedProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active); err != nil {
			return nil, err
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}

func decrementStock(ctx context.Context, tx pgx.Tx, productID int64, qty int) error {
	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = NOW()
		WHERE id=$1 AND stock >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return errStockGuard
	}
	return nil
}

// restoreStock gives every line quantity of the order back to its product.
// Lines repeating a product are summed first; UPDATE ... FROM applies only
// one joined row per target row.
func restoreStock(ctx context.Context, tx pgx.Tx, orderID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE products p SET stock = p.stock + l.qty, updated_at = NOW()
		FROM (
			SELECT product_id, SUM(quantity) AS qty
			FROM order_lines WHERE order_id=$1
			GROUP BY product_id
		) l
		WHERE p.id = l.product_id`, orderID)
	return err
}

func distinctProductIDs(items []CheckoutItem) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}
