package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// AtomicRepository extends PostgresRepository with a single-statement
// decrement-with-floor. The checkout pipeline picks it up by interface
// assertion, closing the read-then-write window the plain repository has.
// Not wired by default; substitute it where lost updates on stock matter.
type AtomicRepository struct {
	*PostgresRepository
}

func NewAtomicRepository(pool DBPool) *AtomicRepository {
	return &AtomicRepository{PostgresRepository: NewPostgresRepository(pool)}
}

// DecrementStockWithFloor subtracts quantity from the product's stock,
// clamping at zero, and returns the remaining stock.
func (r *AtomicRepository) DecrementStockWithFloor(ctx context.Context, productID string, quantity int) (int, error) {
	var remaining int
	row := r.pool.QueryRow(ctx,
		`UPDATE products SET stock=GREATEST(stock-$2, 0), updated_at=NOW() WHERE id=$1 RETURNING stock`,
		productID, quantity)
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	return remaining, nil
}
