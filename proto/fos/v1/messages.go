// Package fosv1 описывает gRPC API сервиса заказов fos.v1.OrderService.
// Сообщения передаются в JSON (см. Codec); деньги кодируются десятичной строкой.
package fosv1

// Address — адрес доставки.
type Address struct {
	Line1    string `json:"line1,omitempty"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
}

type OrderItem struct {
	Id        string `json:"id,omitempty"`
	ProductId string `json:"product_id"`
	VendorId  string `json:"vendor_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Qty       int32  `json:"qty"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal,omitempty"`
}

type Order struct {
	Id              string       `json:"id"`
	CustomerId      string       `json:"customer_id"`
	VendorId        string       `json:"vendor_id,omitempty"`
	Status          string       `json:"status"`
	Currency        string       `json:"currency"`
	Total           string       `json:"total"`
	PaymentMethod   string       `json:"payment_method"`
	HasCapture      bool         `json:"has_capture"`
	Items           []*OrderItem `json:"items"`
	ShippingAddress *Address     `json:"shipping_address,omitempty"`
	Version         int64        `json:"version"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
}

func (o *Order) GetId() string {
	if o == nil {
		return ""
	}
	return o.Id
}

func (o *Order) GetStatus() string {
	if o == nil {
		return ""
	}
	return o.Status
}

type TimelineEvent struct {
	Type     string `json:"type"`
	Reason   string `json:"reason,omitempty"`
	UnixTime int64  `json:"unix_time"`
}

type PlaceOrderRequest struct {
	// OrderId задаётся клиентом для защиты от повторного оформления; при пустом сервер сгенерирует его.
	OrderId         string       `json:"order_id,omitempty"`
	CustomerId      string       `json:"customer_id"`
	VendorId        string       `json:"vendor_id"`
	Currency        string       `json:"currency,omitempty"`
	PaymentMethod   string       `json:"payment_method"`
	CaptureId       string       `json:"capture_id,omitempty"`
	Items           []*OrderItem `json:"items"`
	ShippingAddress *Address     `json:"shipping_address,omitempty"`
}

type PlaceOrderResponse struct {
	Order *Order `json:"order"`
}

type GetOrderRequest struct {
	OrderId string `json:"order_id"`
}

func (r *GetOrderRequest) GetOrderId() string {
	if r == nil {
		return ""
	}
	return r.OrderId
}

type GetOrderResponse struct {
	Order    *Order           `json:"order"`
	Timeline []*TimelineEvent `json:"timeline,omitempty"`
}

type ListOrdersRequest struct {
	CustomerId     string   `json:"customer_id,omitempty"`
	VendorId       string   `json:"vendor_id,omitempty"`
	FilterStatuses []string `json:"filter_statuses,omitempty"`
	PageSize       int32    `json:"page_size,omitempty"`
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
}

type RequestStatusChangeRequest struct {
	OrderId      string `json:"order_id"`
	TargetStatus string `json:"target_status"`
}

func (r *RequestStatusChangeRequest) GetOrderId() string {
	if r == nil {
		return ""
	}
	return r.OrderId
}

type RequestStatusChangeResponse struct {
	Order *Order `json:"order"`
}

type AdvanceOrderStatusRequest struct {
	OrderId string `json:"order_id"`
}

type AdvanceOrderStatusResponse struct {
	Order *Order `json:"order"`
}

type CancelOrderRequest struct {
	OrderId string `json:"order_id"`
	Reason  string `json:"reason,omitempty"`
}

func (r *CancelOrderRequest) GetOrderId() string {
	if r == nil {
		return ""
	}
	return r.OrderId
}

// CancelOrderResponse возвращается и при частичном сбое: заказ уже отменён,
// а Warnings описывают, что нужно сверить вручную.
type CancelOrderResponse struct {
	Order                  *Order   `json:"order"`
	ReconciliationRequired bool     `json:"reconciliation_required"`
	Warnings               []string `json:"warnings,omitempty"`
}

type ComputeRevenueSplitRequest struct {
	OrderId  string `json:"order_id"`
	VendorId string `json:"vendor_id,omitempty"`
	// TaxRate — десятичная ставка ("0.06"); пустая означает ставку отчётов продавца.
	TaxRate string `json:"tax_rate,omitempty"`
}

type ComputeRevenueSplitResponse struct {
	OrderId       string `json:"order_id"`
	VendorId      string `json:"vendor_id"`
	Subtotal      string `json:"subtotal"`
	TaxRate       string `json:"tax_rate"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
	PlatformShare string `json:"platform_share"`
	VendorShare   string `json:"vendor_share"`
}

type BuildChartSeriesRequest struct {
	VendorId    string `json:"vendor_id,omitempty"`
	Granularity string `json:"granularity"`
	WeekFraming string `json:"week_framing,omitempty"`
	// Ref в RFC3339; пустой означает текущий момент.
	Ref      string `json:"ref,omitempty"`
	TaxRate  string `json:"tax_rate,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

type TimeBucket struct {
	Label  string `json:"label"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Value  string `json:"value"`
	Orders int32  `json:"orders"`
}

type BuildChartSeriesResponse struct {
	Granularity string        `json:"granularity"`
	WeekFraming string        `json:"week_framing,omitempty"`
	Buckets     []*TimeBucket `json:"buckets"`
	Total       string        `json:"total"`
	Trend       string        `json:"trend"`
}

type GetTimelineRequest struct {
	OrderId string `json:"order_id"`
}

type GetTimelineResponse struct {
	Events []*TimelineEvent `json:"events"`
}
