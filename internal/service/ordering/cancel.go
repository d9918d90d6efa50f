package ordering

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/metrics"
)

// Cancel отменяет заказ в пределах окна отмены.
//
// Порядок: проверка окна и статуса, возврат средств через провайдера (для paypal и card),
// сохранение статуса cancelled, возврат остатков по позициям.
//
// Если возврат не удался, заказ и остатки не меняются, возвращается *domain.RefundError.
// Если у оплаченного заказа нет capture id, отмена выполняется, но вместе с заказом
// возвращается *domain.DataIntegrityError для ручной сверки. Ошибки возврата остатков
// приходят как domain.ErrStockRevert; статус к этому моменту уже сохранён.
func (s *Service) Cancel(ctx context.Context, orderID, reason string) (domain.Order, error) {
	start := s.now()
	defer func() { s.metrics.RecordOperationDuration(string(domain.OrderStepCancel), time.Since(start)) }()

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		s.metrics.RecordCancellation(metrics.ResultFailed)
		return domain.Order{}, err
	}
	elapsed := order.Elapsed(start)
	logger := s.logger.WithFields(log.Fields{
		"order_id":       order.ID,
		"payment_method": order.PaymentMethod,
	})

	if err := s.checkTransition(&order, domain.OrderStatusCancelled, elapsed); err != nil {
		s.metrics.RecordCancellation(metrics.ResultFailed)
		return order, err
	}

	var integrityErr error
	var refund *domain.RefundReceipt
	if order.PaymentMethod.Refundable() {
		if order.CaptureID == "" {
			integrityErr = &domain.DataIntegrityError{
				OrderID: order.ID,
				Reason:  "paid order has no capture id, refund must be issued manually",
				Err:     domain.ErrMissingCaptureID,
			}
			logger.WithError(integrityErr).Error("cancelling order without refund")
		} else {
			receipt, err := s.refund(ctx, &order)
			if err != nil {
				s.metrics.RecordCancellation(metrics.ResultFailed)
				return order, err
			}
			refund = &receipt
		}
	}

	if err := s.updateStatus(ctx, &order, domain.OrderStatusCancelled, elapsed); err != nil {
		if refund != nil {
			// деньги уже вернули, а статус не сохранился
			logger.WithError(err).WithField("refund_id", refund.RefundID).Error("refund issued but cancellation was not persisted")
		}
		s.metrics.RecordCancellation(metrics.ResultFailed)
		return order, err
	}

	if refund != nil {
		s.emitEvent(ctx, &order, domain.TimelineRefundIssued, map[string]interface{}{
			"refund_id":  refund.RefundID,
			"capture_id": refund.CaptureID,
			"provider":   refund.Provider,
			"amount":     refund.Amount.StringFixed(2),
			"currency":   refund.Currency,
		})
	}
	if integrityErr != nil {
		s.emitEvent(ctx, &order, domain.TimelineIntegrityIssue, map[string]interface{}{
			"reason": integrityErr.Error(),
		})
		s.publishLifecycle(eventIntegrityAnomaly, &order, map[string]interface{}{"reason": integrityErr.Error()})
	}

	stockErr := s.releaseStock(ctx, order.ID, order.Items)
	if stockErr == nil {
		s.emitEvent(ctx, &order, domain.TimelineStockReverted, map[string]interface{}{
			"items": len(order.Items),
		})
	} else {
		logger.WithError(stockErr).Error("order cancelled but stock was not fully reverted")
	}

	payload := map[string]interface{}{
		"reason": reason,
		"ts":     s.now().Format(time.RFC3339Nano),
	}
	if reason == "" {
		delete(payload, "reason")
	}
	s.emitEvent(ctx, &order, domain.TimelineOrderCancelled, payload)
	s.publishLifecycle(eventOrderCancelled, &order, map[string]interface{}{
		"reason":   reason,
		"refunded": refund != nil,
	})

	result := errors.Join(integrityErr, stockErr)
	if result != nil {
		s.metrics.RecordCancellation(metrics.ResultPartial)
	} else {
		s.metrics.RecordCancellation(metrics.ResultOK)
	}
	logger.WithField("elapsed", elapsed.String()).Info("order cancelled")
	return order, result
}

// refund возвращает полную сумму заказа через шлюз его способа оплаты.
func (s *Service) refund(ctx context.Context, order *domain.Order) (domain.RefundReceipt, error) {
	provider := string(order.PaymentMethod)
	refundStart := s.now()
	defer func() { s.metrics.RecordOperationDuration(string(domain.OrderStepRefund), time.Since(refundStart)) }()

	fail := func(err error) (domain.RefundReceipt, error) {
		s.metrics.RecordRefund(provider, metrics.ResultFailed)
		refundErr := &domain.RefundError{OrderID: order.ID, CaptureID: order.CaptureID, Err: err}
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("refund during cancel failed")
		s.appendTimeline(ctx, order.ID, domain.TimelineRefundFailed, err.Error())
		s.publishLifecycle(eventRefundFailed, order, map[string]interface{}{"error": err.Error()})
		return domain.RefundReceipt{}, refundErr
	}

	gateway, err := s.payments.GatewayFor(order.PaymentMethod)
	if err != nil {
		return fail(err)
	}
	receipt, err := gateway.RefundPayment(ctx, order.CaptureID, order.TotalPrice, order.Currency)
	if err != nil {
		return fail(err)
	}
	s.metrics.RecordRefund(provider, metrics.ResultOK)
	return receipt, nil
}

// appendTimeline пишет событие только в timeline: заказ не менялся, публиковать нечего.
func (s *Service) appendTimeline(ctx context.Context, orderID, eventType, reason string) {
	if s.timeline == nil {
		return
	}
	if err := s.timeline.Append(ctx, domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: s.now(),
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("append timeline event failed")
		return
	}
	s.metrics.RecordTimelineEvent()
}
