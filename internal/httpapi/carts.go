package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fos/internal/cart"
	"github.com/vladislavdragonenkov/fos/internal/domain"
)

type cartHandler struct {
	store  cart.Store
	placer cart.OrderPlacer
	logger *log.Entry
}

// RegisterRoutes подключает маршруты корзины под /carts/{user}/{vendor}.
func (h *cartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Put("/items/{product}", h.SetQty)
	r.Delete("/items/{product}", h.RemoveItem)
	r.Post("/checkout", h.Checkout)
}

type lineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Qty       int32  `json:"qty"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type cartResponse struct {
	UserID   string         `json:"user_id"`
	VendorID string         `json:"vendor_id"`
	Lines    []lineResponse `json:"lines"`
	Subtotal string         `json:"subtotal"`
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Qty       int32  `json:"qty"`
	UnitPrice string `json:"unit_price"`
}

type setQtyRequest struct {
	Qty int32 `json:"qty"`
}

type checkoutRequest struct {
	OrderID         string         `json:"order_id"`
	PaymentMethod   string         `json:"payment_method"`
	CaptureID       string         `json:"capture_id"`
	Currency        string         `json:"currency"`
	ShippingAddress domain.Address `json:"shipping_address"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method"`
	Items         int    `json:"items"`
	Warning       string `json:"warning,omitempty"`
}

func cartKey(r *http.Request) cart.Key {
	return cart.Key{UserID: chi.URLParam(r, "user"), VendorID: chi.URLParam(r, "vendor")}
}

func toCartResponse(c cart.Cart) cartResponse {
	resp := cartResponse{
		UserID:   c.Key.UserID,
		VendorID: c.Key.VendorID,
		Lines:    make([]lineResponse, 0, len(c.Lines)),
		Subtotal: c.Subtotal().StringFixed(2),
	}
	for _, l := range c.Lines {
		resp.Lines = append(resp.Lines, lineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Subtotal:  domain.LineSubtotal(l.UnitPrice, l.Qty).StringFixed(2),
		})
	}
	return resp
}

func (h *cartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), cartKey(r))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

func (h *cartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context(), cartKey(r)); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *cartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.UnitPrice))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unit_price must be a decimal")
		return
	}

	c, err := h.store.Add(r.Context(), cartKey(r), cart.Line{
		ProductID: req.ProductID,
		Name:      req.Name,
		Qty:       req.Qty,
		UnitPrice: price,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

func (h *cartHandler) SetQty(w http.ResponseWriter, r *http.Request) {
	var req setQtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	c, err := h.store.SetQty(r.Context(), cartKey(r), chi.URLParam(r, "product"), req.Qty)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

func (h *cartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Remove(r.Context(), cartKey(r), chi.URLParam(r, "product"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// Checkout оформляет корзину в заказ. Если заказ создан, но корзина не очищена,
// отвечаем 201 с предупреждением: повтор создал бы дубль.
func (h *cartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.placer == nil {
		writeError(w, http.StatusServiceUnavailable, "checkout_unavailable", "")
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	key := cartKey(r)
	order, err := cart.Checkout(r.Context(), h.store, h.placer, key, cart.CheckoutInput{
		OrderID:         req.OrderID,
		PaymentMethod:   domain.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod))),
		CaptureID:       req.CaptureID,
		Currency:        req.Currency,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil && order.ID == "" {
		writeDomainError(w, h.logger, err)
		return
	}

	resp := orderResponse{
		ID:            order.ID,
		Status:        string(order.Status),
		Total:         order.TotalPrice.StringFixed(2),
		Currency:      order.Currency,
		PaymentMethod: string(order.PaymentMethod),
		Items:         len(order.Items),
	}
	if err != nil {
		h.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"user_id":  key.UserID,
		}).Warn("checkout left cart uncleared")
		resp.Warning = err.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}
