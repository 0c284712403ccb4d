package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Wire structs for the NOWPayments API. payment_id comes back as a number on
// some endpoints and a string on others, hence json.Number.

type GatewayStatus struct {
	Message string `json:"message"`
}

type Currencies struct {
	Currencies []string `json:"currencies"`
}

type MinAmount struct {
	CurrencyFrom string          `json:"currency_from"`
	CurrencyTo   string          `json:"currency_to"`
	MinAmount    decimal.Decimal `json:"min_amount"`
}

type Estimate struct {
	CurrencyFrom    string          `json:"currency_from"`
	CurrencyTo      string          `json:"currency_to"`
	AmountFrom      decimal.Decimal `json:"amount_from"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
}

type CreatePaymentRequest struct {
	PriceAmount      decimal.Decimal `json:"price_amount"`
	PriceCurrency    string          `json:"price_currency"`
	PayCurrency      string          `json:"pay_currency"`
	OrderID          string          `json:"order_id"`
	OrderDescription string          `json:"order_description"`
	IPNCallbackURL   string          `json:"ipn_callback_url,omitempty"`
}

type PaymentResult struct {
	PaymentID     json.Number     `json:"payment_id"`
	PaymentStatus string          `json:"payment_status"`
	PayAddress    string          `json:"pay_address"`
	PayAmount     decimal.Decimal `json:"pay_amount"`
	PayCurrency   string          `json:"pay_currency"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	PriceCurrency string          `json:"price_currency"`
	ActuallyPaid  decimal.Decimal `json:"actually_paid"`
	OrderID       string          `json:"order_id"`
	CreatedAt     string          `json:"created_at"`
}

type CreateInvoiceRequest struct {
	PriceAmount      decimal.Decimal `json:"price_amount"`
	PriceCurrency    string          `json:"price_currency"`
	OrderID          string          `json:"order_id"`
	OrderDescription string          `json:"order_description"`
	IPNCallbackURL   string          `json:"ipn_callback_url,omitempty"`
	SuccessURL       string          `json:"success_url,omitempty"`
	CancelURL        string          `json:"cancel_url,omitempty"`
}

type InvoiceResult struct {
	ID         json.Number `json:"id"`
	InvoiceURL string      `json:"invoice_url"`
	OrderID    string      `json:"order_id"`
}

// IPNPayload is the webhook body. Only the fields the service reads are
// declared; signature verification runs over the raw bytes.
type IPNPayload struct {
	PaymentID     json.Number     `json:"payment_id"`
	PaymentStatus string          `json:"payment_status"`
	OrderID       string          `json:"order_id"`
	ActuallyPaid  decimal.Decimal `json:"actually_paid"`
	PayAddress    string          `json:"pay_address"`
	PayCurrency   string          `json:"pay_currency"`
}
