package inventory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// Adjustment — один вызов AdjustStock.
type Adjustment struct {
	ProductID string
	Delta     int32
}

// MockAdjuster — конфигурируемая заглушка StockAdjuster для тестов.
type MockAdjuster struct {
	mu sync.Mutex

	// Errs задаёт ошибку для конкретного товара.
	Errs map[string]error
	// Err возвращается для всех товаров, не перечисленных в Errs.
	Err error

	Calls []Adjustment
}

// NewMockAdjuster возвращает mock с успешным сценарием по умолчанию.
func NewMockAdjuster() *MockAdjuster {
	return &MockAdjuster{Errs: make(map[string]error)}
}

// AdjustStock записывает вызов и возвращает настроенную ошибку.
func (m *MockAdjuster) AdjustStock(_ context.Context, productID string, delta int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Adjustment{ProductID: productID, Delta: delta})
	if err, ok := m.Errs[productID]; ok {
		return err
	}
	return m.Err
}

// Adjustments возвращает копию записанных вызовов.
func (m *MockAdjuster) Adjustments() []Adjustment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Adjustment(nil), m.Calls...)
}

var _ domain.StockAdjuster = (*MockAdjuster)(nil)
