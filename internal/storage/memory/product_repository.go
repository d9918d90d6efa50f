package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// productRepositoryInMemory хранит каталог и остатки в памяти.
type productRepositoryInMemory struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

// NewProductRepository создаёт in-memory каталог товаров.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{products: make(map[string]domain.Product)}
}

func (r *productRepositoryInMemory) UpsertProduct(_ context.Context, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	r.products[p.ID] = p
	return nil
}

func (r *productRepositoryInMemory) GetProduct(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// VendorOf возвращает продавца товара.
func (r *productRepositoryInMemory) VendorOf(ctx context.Context, productID string) (string, error) {
	p, err := r.GetProduct(ctx, productID)
	if err != nil {
		return "", err
	}
	return p.VendorID, nil
}

// AdjustStock меняет остаток на delta, не допуская отрицательного значения.
func (r *productRepositoryInMemory) AdjustStock(_ context.Context, productID string, delta int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return domain.ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()
	r.products[productID] = p
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
