package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/config"
	"crypto-card-shop/internal/model"

	"github.com/shopspring/decimal"
)

type NowPaymentsClient interface {
	Status(ctx context.Context) (*model.GatewayStatus, error)
	Currencies(ctx context.Context) ([]string, error)
	MinAmount(ctx context.Context, currency string) (*model.MinAmount, error)
	Estimate(ctx context.Context, amount decimal.Decimal, currency string) (*model.Estimate, error)
	CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentResult, error)
	CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.InvoiceResult, error)
	PaymentStatus(ctx context.Context, paymentID string) (*model.PaymentResult, error)
}

type nowPaymentsClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
}

func NewNowPaymentsClient(cfg *config.NowPayments) NowPaymentsClient {
	return &nowPaymentsClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: cfg.BaseApiURL(),
		apiKey:     cfg.APIKey,
	}
}

// call runs one request against the gateway. One attempt, no retry; the
// client timeout bounds worst-case latency. Error kinds stay discriminable
// for the caller: ConfigError, NetworkError, GatewayError, ProtocolError.
func (c *nowPaymentsClientImpl) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if c.apiKey == "" {
		return &apperr.ConfigError{Missing: "NOWPAYMENTS_API_KEY"}
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request payload: %w", err)
		}
		reqBody = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperr.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apperr.GatewayError{Status: resp.StatusCode, Message: gatewayMessage(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &apperr.ProtocolError{Err: err}
		}
	}

	return nil
}

// gatewayMessage pulls the human message out of an error body, falling back
// to the raw body when it is not the usual JSON shape.
func gatewayMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return string(raw)
}

func (c *nowPaymentsClientImpl) Status(ctx context.Context) (*model.GatewayStatus, error) {
	var out model.GatewayStatus
	if err := c.call(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *nowPaymentsClientImpl) Currencies(ctx context.Context) ([]string, error) {
	var out model.Currencies
	if err := c.call(ctx, http.MethodGet, "/currencies", nil, &out); err != nil {
		return nil, err
	}
	return out.Currencies, nil
}

func (c *nowPaymentsClientImpl) MinAmount(ctx context.Context, currency string) (*model.MinAmount, error) {
	path := fmt.Sprintf("/min-amount?currency_from=%s&currency_to=usd", url.QueryEscape(currency))

	var out model.MinAmount
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *nowPaymentsClientImpl) Estimate(ctx context.Context, amount decimal.Decimal, currency string) (*model.Estimate, error) {
	path := fmt.Sprintf("/estimate?amount=%s&currency_from=usd&currency_to=%s",
		amount.String(), url.QueryEscape(currency))

	var out model.Estimate
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *nowPaymentsClientImpl) CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentResult, error) {
	var out model.PaymentResult
	if err := c.call(ctx, http.MethodPost, "/payment", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *nowPaymentsClientImpl) CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.InvoiceResult, error) {
	var out model.InvoiceResult
	if err := c.call(ctx, http.MethodPost, "/invoice", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *nowPaymentsClientImpl) PaymentStatus(ctx context.Context, paymentID string) (*model.PaymentResult, error) {
	var out model.PaymentResult
	if err := c.call(ctx, http.MethodGet, "/payment/"+url.PathEscape(paymentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
