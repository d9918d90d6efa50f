package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/cart"
	"github.com/vladislavdragonenkov/fos/internal/domain"
	"github.com/vladislavdragonenkov/fos/internal/report"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeDomainError переводит доменную ошибку в HTTP-ответ.
func writeDomainError(w http.ResponseWriter, logger *log.Entry, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
		writeError(w, status, code, "")
		return
	}
	writeError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found"
	case errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound, "cart_line_not_found"
	case errors.Is(err, domain.ErrCancellationWindowExpired):
		return http.StatusConflict, "cancellation_window_expired"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrOrderVersionConflict):
		return http.StatusConflict, "version_conflict"
	case errors.Is(err, domain.ErrRefundFailed):
		return http.StatusBadGateway, "refund_failed"
	case errors.Is(err, domain.ErrDataIntegrity):
		return http.StatusUnprocessableEntity, "data_integrity"
	case errors.Is(err, cart.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "cart_empty"
	case errors.Is(err, cart.ErrInvalidLine),
		errors.Is(err, cart.ErrInvalidKey),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, report.ErrUnknownGranularity),
		errors.Is(err, report.ErrUnknownWeekFraming),
		isValidation(err):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func isValidation(err error) bool {
	for _, target := range []error{
		domain.ErrCustomerRequired,
		domain.ErrCurrencyRequired,
		domain.ErrItemsRequired,
		domain.ErrAmountNegative,
		domain.ErrItemQtyInvalid,
		domain.ErrItemPriceInvalid,
		domain.ErrItemProductRequired,
		domain.ErrItemSubtotalMismatch,
		domain.ErrAmountMismatch,
		domain.ErrPaymentMethodInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
