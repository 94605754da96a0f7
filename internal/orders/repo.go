package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/restaurant-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB postgres.DB }

var txOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// CreateOrderTx persists a checkout in one transaction: stock of every line is
// checked in request order and decremented, then the order and its lines are
// inserted. Any failure leaves the database untouched.
func (r *Repo) CreateOrderTx(ctx context.Context, req CheckoutRequest, deliveryID int64) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, txOptions)
	if err != nil {
		return nil, txFailure("begin", err)
	}
	done := false
	defer func() {
		if !done {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	var fee decimal.Decimal
	var active bool
	err = tx.QueryRow(ctx, `SELECT delivery_fee, active FROM branches WHERE id=$1`, req.BranchID).Scan(&fee, &active)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !active) {
		return nil, fmt.Errorf("%w: branch %d", ErrInvalidBranch, req.BranchID)
	}
	if err != nil {
		return nil, txFailure("load branch", err)
	}

	var paymentOK, deliveryOK bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM payment_methods WHERE id=$1),
		       EXISTS(SELECT 1 FROM delivery_types WHERE id=$2)`,
		req.PaymentMethodID, req.DeliveryTypeID).Scan(&paymentOK, &deliveryOK)
	if err != nil {
		return nil, txFailure("check references", err)
	}
	if !paymentOK {
		return nil, fmt.Errorf("%w: unknown payment method %d", ErrInvalidRequest, req.PaymentMethodID)
	}
	if !deliveryOK {
		return nil, fmt.Errorf("%w: unknown delivery type %d", ErrInvalidRequest, req.DeliveryTypeID)
	}

	products, err := lockProducts(ctx, tx, req.BranchID, distinctProductIDs(req.Items))
	if err != nil {
		return nil, txFailure("lock products", err)
	}

	reserved := make(map[int64]int, len(products))
	lines := make([]Line, 0, len(req.Items))
	for _, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok || !p.Active {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidItem, it.ProductID)
		}
		if _, ok := RemainingAfter(p.Stock, reserved[p.ID], it.Quantity); !ok {
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Product:   p.Name,
				Available: p.Stock - reserved[p.ID],
				Requested: it.Quantity,
			}
		}
		if err := decrementStock(ctx, tx, p.ID, it.Quantity); err != nil {
			return nil, txFailure("decrement stock", err)
		}
		reserved[p.ID] += it.Quantity
		lines = append(lines, Line{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
			Note:        it.Note,
		})
	}

	o := &Order{
		BranchID:        req.BranchID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		PaymentMethodID: req.PaymentMethodID,
		DeliveryTypeID:  req.DeliveryTypeID,
		Status:          StatusPending,
		StatusName:      StatusPending.String(),
		Total:           ComputeTotal(lines, req.DeliveryTypeID, deliveryID, fee),
		Notes:           req.Notes,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(branch_id, customer_name, customer_phone, customer_address,
		                   payment_method_id, delivery_type_id, status_id, total, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`,
		o.BranchID, o.CustomerName, o.CustomerPhone, o.CustomerAddress,
		o.PaymentMethodID, o.DeliveryTypeID, o.Status, o.Total, o.Notes,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, txFailure("insert order", err)
	}

	for i := range lines {
		err := tx.QueryRow(ctx, `
			INSERT INTO order_lines(order_id, product_id, quantity, unit_price, note)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id`,
			o.ID, lines[i].ProductID, lines[i].Quantity, lines[i].UnitPrice, lines[i].Note,
		).Scan(&lines[i].ID)
		if err != nil {
			return nil, txFailure("insert order line", err)
		}
	}
	o.Lines = lines

	err = tx.Commit(ctx)
	done = true
	if err != nil {
		return nil, txFailure("commit", err)
	}
	return o, nil
}

// StatusChange describes a committed status update.
type StatusChange struct {
	OrderID       int64
	BranchID      int64
	From          StatusID
	To            StatusID
	StockRestored bool
}

type transitionPolicy struct {
	Strict          bool
	RestoreOnCancel bool
}

// ChangeStatusTx locks the order row, lets authorize inspect the order's
// branch, then writes the new status. With RestoreOnCancel set, entering
// Cancelled gives the line quantities back in the same transaction.
func (r *Repo) ChangeStatusTx(ctx context.Context, orderID int64, to StatusID, policy transitionPolicy,
	authorize func(branchID, businessID int64) error) (*StatusChange, error) {
	tx, err := r.DB.BeginTx(ctx, txOptions)
	if err != nil {
		return nil, txFailure("begin", err)
	}
	done := false
	defer func() {
		if !done {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	ch := &StatusChange{OrderID: orderID, To: to}
	var businessID int64
	err = tx.QueryRow(ctx, `
		SELECT o.status_id, o.branch_id, b.business_id
		FROM orders o JOIN branches b ON b.id = o.branch_id
		WHERE o.id=$1
		FOR UPDATE OF o`, orderID).Scan(&ch.From, &ch.BranchID, &businessID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, txFailure("load order", err)
	}
	if err := authorize(ch.BranchID, businessID); err != nil {
		return nil, err
	}
	if policy.Strict && !CanTransition(ch.From, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ch.From, to)
	}

	if policy.RestoreOnCancel && to == StatusCancelled && ch.From != StatusCancelled {
		if err := restoreStock(ctx, tx, orderID); err != nil {
			return nil, txFailure("restore stock", err)
		}
		ch.StockRestored = true
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status_id=$2 WHERE id=$1`, orderID, to); err != nil {
		return nil, txFailure("update status", err)
	}

	err = tx.Commit(ctx)
	done = true
	if err != nil {
		return nil, txFailure("commit", err)
	}
	return ch, nil
}

// GetOrder returns the order with its lines and the business owning its branch.
func (r *Repo) GetOrder(ctx context.Context, orderID int64) (*Order, int64, error) {
	var o Order
	var businessID int64
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.branch_id, b.business_id, o.customer_name, o.customer_phone, o.customer_address,
		       o.payment_method_id, o.delivery_type_id, o.status_id, o.total, o.notes, o.created_at
		FROM orders o JOIN branches b ON b.id = o.branch_id
		WHERE o.id=$1`, orderID).
		Scan(&o.ID, &o.BranchID, &businessID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
			&o.PaymentMethodID, &o.DeliveryTypeID, &o.Status, &o.Total, &o.Notes, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	o.StatusName = o.Status.String()

	rows, err := r.DB.Query(ctx, `
		SELECT l.id, l.product_id, p.name, l.quantity, l.unit_price, l.note
		FROM order_lines l JOIN products p ON p.id = l.product_id
		WHERE l.order_id=$1
		ORDER BY l.id`, orderID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Note); err != nil {
			return nil, 0, err
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return &o, businessID, nil
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID int64) (StatusID, error) {
	var s StatusID
	err := r.DB.QueryRow(ctx, `SELECT status_id FROM orders WHERE id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return s, err
}

func (r *Repo) branchBusiness(ctx context.Context, branchID int64) (int64, error) {
	var businessID int64
	err := r.DB.QueryRow(ctx, `SELECT business_id FROM branches WHERE id=$1`, branchID).Scan(&businessID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrInvalidBranch
	}
	return businessID, err
}

// ListByBranch returns the branch's orders newest first, without lines.
func (r *Repo) ListByBranch(ctx context.Context, branchID int64, f ListFilter) ([]Order, error) {
	var status *int16
	if f.Status != nil {
		s := int16(*f.Status)
		status = &s
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, branch_id, customer_name, customer_phone, customer_address,
		       payment_method_id, delivery_type_id, status_id, total, notes, created_at
		FROM orders
		WHERE branch_id=$1 AND ($2::smallint IS NULL OR status_id=$2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`, branchID, status, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.BranchID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
			&o.PaymentMethodID, &o.DeliveryTypeID, &o.Status, &o.Total, &o.Notes, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.StatusName = o.Status.String()
		out = append(out, o)
	}
	return out, rows.Err()
}
