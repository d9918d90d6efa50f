package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

const (
	// PayPalSandboxURL — базовый адрес REST API песочницы PayPal.
	PayPalSandboxURL = "https://api-m.sandbox.paypal.com"

	paypalProvider       = "paypal"
	paypalDefaultTimeout = 15 * time.Second
	paypalMaxErrorBody   = 64 << 10
)

// PayPalConfig описывает учётные данные REST-приложения PayPal.
type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// PayPalGateway выполняет возврат по capture id через /v2/payments/captures/{id}/refund.
type PayPalGateway struct {
	baseURL string
	client  *http.Client
}

// APIError — ответ PayPal с кодом ошибки.
type APIError struct {
	StatusCode int
	Name       string `json:"name"`
	Message    string `json:"message"`
	DebugID    string `json:"debug_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal api error %d %s: %s (debug_id=%s)", e.StatusCode, e.Name, e.Message, e.DebugID)
}

// NewPayPalGateway создаёт клиент с OAuth2 client credentials.
// Токен кэшируется и обновляется средствами oauth2.
func NewPayPalGateway(ctx context.Context, cfg PayPalConfig) (*PayPalGateway, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("paypal client id and secret are required")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = PayPalSandboxURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = paypalDefaultTimeout
	}

	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	// Токен запрашивается тем же http-клиентом с таймаутом.
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	client := creds.Client(tokenCtx)
	client.Timeout = timeout

	return &PayPalGateway{baseURL: base, client: client}, nil
}

type paypalMoney struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency_code"`
}

type paypalRefundRequest struct {
	Amount      paypalMoney `json:"amount"`
	NoteToPayer string      `json:"note_to_payer,omitempty"`
}

type paypalRefundResponse struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Amount     paypalMoney `json:"amount"`
	CreateTime time.Time   `json:"create_time"`
}

// RefundPayment возвращает amount по capture id. PayPal-Request-Id делает повтор запроса идемпотентным.
func (g *PayPalGateway) RefundPayment(ctx context.Context, captureID string, amount decimal.Decimal, currency string) (domain.RefundReceipt, error) {
	if captureID == "" {
		return domain.RefundReceipt{}, domain.ErrMissingCaptureID
	}

	body, err := json.Marshal(paypalRefundRequest{
		Amount:      paypalMoney{Value: amount.StringFixed(2), CurrencyCode: currency},
		NoteToPayer: "Order cancelled",
	})
	if err != nil {
		return domain.RefundReceipt{}, fmt.Errorf("marshal paypal refund: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/payments/captures/%s/refund", g.baseURL, url.PathEscape(captureID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.RefundReceipt{}, fmt.Errorf("build paypal refund request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	req.Header.Set("PayPal-Request-Id", "refund-"+captureID)

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.RefundReceipt{}, fmt.Errorf("paypal refund request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, paypalMaxErrorBody))
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, apiErr)
		}
		return domain.RefundReceipt{}, apiErr
	}

	var out paypalRefundResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.RefundReceipt{}, fmt.Errorf("decode paypal refund response: %w", err)
	}

	receipt := domain.RefundReceipt{
		RefundID:  out.ID,
		CaptureID: captureID,
		Provider:  paypalProvider,
		Status:    domain.RefundStatusPending,
		Amount:    amount,
		Currency:  currency,
		CreatedAt: out.CreateTime,
	}
	if strings.EqualFold(out.Status, "COMPLETED") {
		receipt.Status = domain.RefundStatusCompleted
	}
	if out.Amount.Value != "" {
		if v, err := decimal.NewFromString(out.Amount.Value); err == nil {
			receipt.Amount = v
		}
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now().UTC()
	}
	return receipt, nil
}

var _ domain.PaymentGateway = (*PayPalGateway)(nil)
