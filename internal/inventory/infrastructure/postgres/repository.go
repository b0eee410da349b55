package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/marketplace-orders/internal/inventory/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, owner_id, name, description, price, stock_count, created_at`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Insert(ctx context.Context, p domain.Product) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO products (`+productColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.Price, p.StockCount, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// DecreaseStock is a single conditional UPDATE, so concurrent decrements
// never take stock below zero. When no row matches, a second read tells an
// unknown product apart from a short one.
func (r *Repository) DecreaseStock(ctx context.Context, id string, quantity int) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `UPDATE products SET stock_count = stock_count - $2
		WHERE id=$1 AND stock_count >= $2
		RETURNING `+productColumns, id, quantity)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("decrease stock of %s: %w", id, err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, id).Scan(&exists); err != nil {
		return domain.Product{}, fmt.Errorf("check product %s: %w", id, err)
	}
	if !exists {
		return domain.Product{}, domain.ErrProductNotFound
	}
	r.log.Debug("stock decrement refused", "product_id", id, "quantity", quantity)
	return domain.Product{}, domain.ErrInsufficientStock
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Price, &p.StockCount, &p.CreatedAt)
	return p, err
}
