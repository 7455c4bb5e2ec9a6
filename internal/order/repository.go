package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, next Status) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, customer_name, customer_email, customer_phone,
            ship_address, ship_city, ship_state, ship_zip, ship_country,
            payment_method, subtotal, tax, total, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		o.ID, o.UserID, o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.Shipping.Address, o.Shipping.City, o.Shipping.State, o.Shipping.ZipCode, o.Shipping.Country,
		o.PaymentMethod, o.Subtotal, o.Tax, o.Total, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, position, product_id, name, price, quantity, subtotal)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.NewString(), o.ID, i, it.ProductID, it.Name, it.Price, it.Quantity, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const orderColumns = `id, user_id, customer_name, customer_email, customer_phone,
        ship_address, ship_city, ship_state, ship_zip, ship_country,
        payment_method, subtotal, tax, total, status, created_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.Shipping.Address, &o.Shipping.City, &o.Shipping.State, &o.Shipping.ZipCode, &o.Shipping.Country,
		&o.PaymentMethod, &o.Subtotal, &o.Tax, &o.Total, &status, &o.CreatedAt)
	o.Status = Status(status)
	return o, err
}

func (r *repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// loadItems reads the order's lines back in the position they were written,
// so Items keeps its cart ordering across round trips.
func (r *repo) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, name, price, quantity, subtotal
         FROM order_items WHERE order_id = $1 ORDER BY position`, o.ID)
	if err != nil {
		return fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.Subtotal); err != nil {
			return fmt.Errorf("scan order_item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}

// UpdateStatus applies an administrative transition, enforcing the status
// machine inside a transaction so two admins cannot race past it.
func (r *repo) UpdateStatus(ctx context.Context, orderID string, next Status) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("select status: %w", err)
	}

	if !CanTransition(Status(current), next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, orderID, string(next)); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
