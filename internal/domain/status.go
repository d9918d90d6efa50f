package domain

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан при checkout и ждёт подтверждения продавцом.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — продавец принял заказ.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusPreparing — заказ готовится.
	OrderStatusPreparing OrderStatus = "preparing"
	// OrderStatusReady — заказ готов к выдаче/доставке.
	OrderStatusReady OrderStatus = "ready"
	// OrderStatusCompleted — заказ выдан клиенту (терминальный).
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён (терминальный).
	OrderStatusCancelled OrderStatus = "cancelled"
)

// CancellationWindow — период после создания заказа, в течение которого разрешена отмена.
const CancellationWindow = 60 * time.Second

// forwardChain задаёт порядок прямых переходов.
var forwardChain = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
}

// cancellable — статусы, из которых допустима отмена (в пределах окна).
var cancellable = map[OrderStatus]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusPreparing: true,
}

// ParseOrderStatus разбирает строковое представление статуса.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrStatusUnknown, raw)
	}
	return s, nil
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	return s == OrderStatusCancelled || s.rank() >= 0
}

// IsTerminal — completed и cancelled поглощающие.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Cancellable сообщает, можно ли отменить заказ в этом статусе (без учёта окна).
func (s OrderStatus) Cancellable() bool {
	return cancellable[s]
}

func (s OrderStatus) rank() int {
	for i, st := range forwardChain {
		if st == s {
			return i
		}
	}
	return -1
}

// NextStatus возвращает единственный следующий статус или false для терминальных.
func NextStatus(current OrderStatus) (OrderStatus, bool) {
	if current.IsTerminal() {
		return "", false
	}
	idx := current.rank()
	if idx < 0 || idx+1 >= len(forwardChain) {
		return "", false
	}
	return forwardChain[idx+1], true
}

// CanTransition разрешает только соседний прямой переход либо отмену
// из pending/confirmed/preparing, пока elapsed <= CancellationWindow.
func CanTransition(current, target OrderStatus, elapsed time.Duration) bool {
	return CheckTransition(current, target, elapsed) == nil
}

// CheckTransition возвращает причину отказа в переходе или nil.
func CheckTransition(current, target OrderStatus, elapsed time.Duration) error {
	if !current.Valid() || !target.Valid() || current.IsTerminal() {
		return &TransitionError{From: current, To: target}
	}

	if target == OrderStatusCancelled {
		if !current.Cancellable() {
			return &TransitionError{From: current, To: target}
		}
		if elapsed > CancellationWindow {
			return ErrCancellationWindowExpired
		}
		return nil
	}

	next, ok := NextStatus(current)
	if !ok || next != target {
		return &TransitionError{From: current, To: target}
	}
	return nil
}
