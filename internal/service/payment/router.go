// Package payment содержит адаптеры платёжных провайдеров для возвратов.
package payment

import (
	"fmt"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

// Router выбирает шлюз возврата по способу оплаты.
type Router struct {
	gateways map[domain.PaymentMethod]domain.PaymentGateway
}

// NewRouter создаёт пустой маршрутизатор.
func NewRouter() *Router {
	return &Router{gateways: make(map[domain.PaymentMethod]domain.PaymentGateway)}
}

// Register привязывает шлюз к способу оплаты. nil-шлюз игнорируется.
func (r *Router) Register(method domain.PaymentMethod, gw domain.PaymentGateway) *Router {
	if gw != nil {
		r.gateways[method] = gw
	}
	return r
}

// GatewayFor возвращает шлюз или ErrPaymentGatewayMissing.
func (r *Router) GatewayFor(method domain.PaymentMethod) (domain.PaymentGateway, error) {
	gw, ok := r.gateways[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentGatewayMissing, method)
	}
	return gw, nil
}

var _ domain.PaymentGatewayResolver = (*Router)(nil)
