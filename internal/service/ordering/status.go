package ordering

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// RequestStatusChange проверяет переход по таблице статусов и сохраняет его.
// Переход в cancelled выполняется через Cancel с возвратом средств и остатков.
func (s *Service) RequestStatusChange(ctx context.Context, orderID string, target domain.OrderStatus) (domain.Order, error) {
	if target == domain.OrderStatusCancelled {
		return s.Cancel(ctx, orderID, "")
	}

	start := s.now()
	defer func() { s.metrics.RecordOperationDuration(string(domain.OrderStepAdvance), time.Since(start)) }()

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.checkTransition(&order, target, order.Elapsed(start)); err != nil {
		return order, err
	}

	from := order.Status
	if err := s.updateStatus(ctx, &order, target, order.Elapsed(start)); err != nil {
		return order, err
	}
	s.publishLifecycle(eventStatusChanged, &order, map[string]interface{}{"from": string(from)})
	return order, nil
}

// AdvanceStatus переводит заказ в следующий статус цепочки.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	next, ok := domain.NextStatus(order.Status)
	if !ok {
		s.metrics.RecordTransitionRejected(rejectInvalid)
		return order, &domain.TransitionError{From: order.Status}
	}
	return s.RequestStatusChange(ctx, orderID, next)
}

const (
	rejectInvalid = "invalid_transition"
	rejectWindow  = "window_expired"
)

func (s *Service) checkTransition(order *domain.Order, target domain.OrderStatus, elapsed time.Duration) error {
	err := domain.CheckTransition(order.Status, target, elapsed)
	if err == nil {
		return nil
	}
	reason := rejectInvalid
	if errors.Is(err, domain.ErrCancellationWindowExpired) {
		reason = rejectWindow
	}
	s.metrics.RecordTransitionRejected(reason)
	s.logger.WithError(err).WithFields(log.Fields{
		"order_id": order.ID,
		"from":     order.Status,
		"to":       target,
		"elapsed":  elapsed.String(),
	}).Info("status transition rejected")
	return err
}

// updateStatus сохраняет новый статус с optimistic locking. При конфликте версий
// заказ перечитывается, переход проверяется заново, задержка растёт экспоненциально.
func (s *Service) updateStatus(ctx context.Context, order *domain.Order, target domain.OrderStatus, elapsed time.Duration) error {
	for attempt := 0; attempt < s.maxSaveAttempts; attempt++ {
		previousStatus := order.Status
		previousUpdated := order.UpdatedAt
		order.Status = target
		order.UpdatedAt = s.now()

		err := s.orders.Save(ctx, *order)
		if err == nil {
			order.Version++
			s.metrics.RecordStatusChange(string(target))
			s.emitStatusEvent(ctx, order, previousStatus)
			return nil
		}

		order.Status = previousStatus
		order.UpdatedAt = previousUpdated
		if !domain.IsVersionConflict(err) || attempt == s.maxSaveAttempts-1 {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"attempt":  attempt + 1,
			}).Error("failed to persist status")
			return err
		}

		s.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"attempt":  attempt + 1,
			"version":  order.Version,
		}).Warn("version conflict detected, retrying")

		fresh, loadErr := s.orders.Get(ctx, order.ID)
		if loadErr != nil {
			s.logger.WithError(loadErr).WithField("order_id", order.ID).Error("failed to reload order after conflict")
			return loadErr
		}
		*order = fresh
		// параллельный вызов мог уже перевести заказ: повторный переход отклоняется
		if err := s.checkTransition(order, target, elapsed); err != nil {
			return err
		}

		delay := s.conflictDelay * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return domain.ErrOrderVersionConflict
}

func (s *Service) emitStatusEvent(ctx context.Context, order *domain.Order, from domain.OrderStatus) {
	s.emitEvent(ctx, order, domain.TimelineStatusChanged, map[string]interface{}{
		"from":       string(from),
		"status":     string(order.Status),
		"updated_at": order.UpdatedAt.Format(time.RFC3339Nano),
		"ts":         order.UpdatedAt.Format(time.RFC3339Nano),
	})
}
