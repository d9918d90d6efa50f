package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// MockGateway — конфигурируемая заглушка PaymentGateway для разработки и тестов.
type MockGateway struct {
	mu sync.Mutex

	Provider  string
	RefundErr error

	RefundCalls   int
	LastCaptureID string
	LastAmount    decimal.Decimal
}

// NewMockGateway возвращает mock с успешным возвратом по умолчанию.
func NewMockGateway(provider string) *MockGateway {
	return &MockGateway{Provider: provider}
}

// RefundPayment возвращает настроенную ошибку либо подтверждённый возврат и считает вызовы.
func (m *MockGateway) RefundPayment(_ context.Context, captureID string, amount decimal.Decimal, currency string) (domain.RefundReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RefundCalls++
	m.LastCaptureID = captureID
	m.LastAmount = amount
	if m.RefundErr != nil {
		return domain.RefundReceipt{}, m.RefundErr
	}
	return domain.RefundReceipt{
		RefundID:  "mock-" + uuid.NewString(),
		CaptureID: captureID,
		Provider:  m.Provider,
		Status:    domain.RefundStatusCompleted,
		Amount:    amount,
		Currency:  currency,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Calls возвращает число вызовов RefundPayment.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RefundCalls
}

var _ domain.PaymentGateway = (*MockGateway)(nil)
