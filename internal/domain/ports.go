package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentGateway описывает взаимодействие с платёжным провайдером при отмене заказа.
type PaymentGateway interface {
	// RefundPayment возвращает клиенту amount по capture id. Должен быть идемпотентным по captureID.
	RefundPayment(ctx context.Context, captureID string, amount decimal.Decimal, currency string) (RefundReceipt, error)
}

// PaymentGatewayResolver выбирает шлюз возврата по способу оплаты заказа.
type PaymentGatewayResolver interface {
	GatewayFor(method PaymentMethod) (PaymentGateway, error)
}

// StockAdjuster изменяет остаток товара на delta (положительный delta возвращает товар на склад).
type StockAdjuster interface {
	AdjustStock(ctx context.Context, productID string, delta int32) error
}

// VendorResolver определяет продавца товара по каталогу.
type VendorResolver interface {
	VendorOf(ctx context.Context, productID string) (string, error)
}

// ProductRepository хранит каталог товаров и их остатки.
type ProductRepository interface {
	StockAdjuster
	VendorResolver
	UpsertProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, id string) (Product, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	// PullPending возвращает самые старые pending-сообщения в порядке постановки.
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	List(ctx context.Context, orderID string) ([]TimelineEvent, error)
}

// OrderStep задаёт константы шагов обработки заказа для метрик и логов.
type OrderStep string

const (
	OrderStepPlace    OrderStep = "place"
	OrderStepAdvance  OrderStep = "advance"
	OrderStepCancel   OrderStep = "cancel"
	OrderStepRefund   OrderStep = "refund"
	OrderStepRestock  OrderStep = "restock"
	OrderStepValidate OrderStep = "validate"
)

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
