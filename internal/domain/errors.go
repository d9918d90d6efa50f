package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствующего кода валюты.
	ErrCurrencyRequired = errors.New("currency is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total_price must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Позиция без ссылки на товар.
	ErrItemProductRequired = errors.New("item product_id is required")
	// Subtotal позиции не равен unit_price * qty.
	ErrItemSubtotalMismatch = errors.New("item subtotal does not match unit_price * qty")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")
	// Неизвестный способ оплаты.
	ErrPaymentMethodInvalid = errors.New("payment method is not supported")
	// Неизвестный статус заказа.
	ErrStatusUnknown = errors.New("unknown order status")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrProductNotFound — товар отсутствует в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock — остаток товара ушёл бы в минус.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// ErrInvalidTransition — запрошенный переход нарушает таблицу статусов.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrCancellationWindowExpired — отмена запрошена позже CancellationWindow.
	ErrCancellationWindowExpired = errors.New("cancellation window expired")
	// ErrRefundFailed — платёжный провайдер не смог выполнить возврат при отмене.
	ErrRefundFailed = errors.New("refund failed")
	// ErrDataIntegrity — аномалия данных, требующая ручной сверки.
	ErrDataIntegrity = errors.New("data integrity anomaly")
	// ErrMissingCaptureID — у оплаченного заказа нет capture id.
	ErrMissingCaptureID = errors.New("payment capture id is missing")
	// ErrUnknownProductVendor — для товара не удалось определить продавца.
	ErrUnknownProductVendor = errors.New("product vendor is unknown")
	// ErrStockRevert — не удалось вернуть остатки после отмены.
	ErrStockRevert = errors.New("stock revert failed")
	// ErrPaymentGatewayMissing — для способа оплаты не настроен шлюз.
	ErrPaymentGatewayMissing = errors.New("payment gateway is not configured")
)

// TransitionError описывает отклонённый переход статуса.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("invalid status transition: %s has no next status", e.From)
	}
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// Is позволяет сравнивать с ErrInvalidTransition через errors.Is.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// RefundError — сбой возврата средств; заказ при этом не изменяется.
type RefundError struct {
	OrderID   string
	CaptureID string
	Err       error
}

func (e *RefundError) Error() string {
	return fmt.Sprintf("refund for order %s (capture %s) failed: %v", e.OrderID, e.CaptureID, e.Err)
}

func (e *RefundError) Is(target error) bool {
	return target == ErrRefundFailed
}

func (e *RefundError) Unwrap() error {
	return e.Err
}

// DataIntegrityError сигнализирует об аномалии, которую нужно сверить вручную.
type DataIntegrityError struct {
	OrderID string
	Reason  string
	Err     error
}

func (e *DataIntegrityError) Error() string {
	if e.OrderID == "" {
		return fmt.Sprintf("data integrity anomaly: %s", e.Reason)
	}
	return fmt.Sprintf("data integrity anomaly in order %s: %s", e.OrderID, e.Reason)
}

func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsPartialFailure — ошибки, при которых отмена уже зафиксирована, но требуется сверка.
func IsPartialFailure(err error) bool {
	return errors.Is(err, ErrDataIntegrity) || errors.Is(err, ErrStockRevert)
}
