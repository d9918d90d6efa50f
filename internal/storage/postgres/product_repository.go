package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию каталога и остатков.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) UpsertProduct(ctx context.Context, p domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, vendor_id, name, price, stock, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE
		SET vendor_id = EXCLUDED.vendor_id,
		    name = EXCLUDED.name,
		    price = EXCLUDED.price,
		    stock = EXCLUDED.stock,
		    updated_at = EXCLUDED.updated_at
	`, p.ID, p.VendorID, p.Name, p.Price, p.Stock, p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (r *productRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, vendor_id, name, price, stock, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.VendorID, &p.Name, &p.Price, &p.Stock, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func (r *productRepository) VendorOf(ctx context.Context, productID string) (string, error) {
	p, err := r.GetProduct(ctx, productID)
	if err != nil {
		return "", err
	}
	return p.VendorID, nil
}

// AdjustStock атомарно меняет остаток; отрицательный результат отклоняется условием в UPDATE.
func (r *productRepository) AdjustStock(ctx context.Context, productID string, delta int32) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $2,
		    updated_at = $3
		WHERE id = $1
		  AND stock + $2 >= 0
	`, productID, delta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.GetProduct(ctx, productID); err != nil {
		return err
	}
	return domain.ErrInsufficientStock
}

var _ domain.ProductRepository = (*productRepository)(nil)
