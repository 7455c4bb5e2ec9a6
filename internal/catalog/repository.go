package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Get(ctx context.Context, productID string) (Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	Stock(ctx context.Context, productID string) (int, error)
	SetStock(ctx context.Context, productID string, stock int) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `id, name, description, price, image_url, category, tags, stock, featured, bestseller, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category,
		&p.Tags, &p.Stock, &p.Featured, &p.Bestseller, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) Get(ctx context.Context, productID string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, productID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + productColumns + ` FROM products`)

	var conds []string
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, "category=$"+strconv.Itoa(len(args)))
	}
	if f.Featured {
		conds = append(conds, "featured")
	}
	if f.Bestseller {
		conds = append(conds, "bestseller")
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return products, nil
}

func (r *PostgresRepository) Stock(ctx context.Context, productID string) (int, error) {
	var stock int
	row := r.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, productID)
	if err := row.Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("select stock: %w", err)
	}
	return stock, nil
}

// SetStock writes an absolute stock value. It is both the admin restock
// primitive and the write half of the checkout decrement, which reads the
// current value first and clamps at zero before calling here.
func (r *PostgresRepository) SetStock(ctx context.Context, productID string, stock int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET stock=$2, updated_at=NOW() WHERE id=$1`, productID, stock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
