package dto

import "time"

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreatePaymentRequest struct {
	PlayerID     string   `json:"playerId"`
	Currency     string   `json:"currency"`
	RedeemOption string   `json:"redeemOption"`
	Customer     Customer `json:"customer"`
}

type CreateInvoiceRequest struct {
	PlayerID     string   `json:"playerId"`
	RedeemOption string   `json:"redeemOption"`
	Customer     Customer `json:"customer"`
}

type CardResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
	BTCAmount string `json:"btc_amount"`
	Sold      bool   `json:"sold"`
}

type OrderResponse struct {
	OrderID       string    `json:"order_id"`
	PlayerID      string    `json:"player_id"`
	Status        string    `json:"status"`
	PriceAmount   int64     `json:"price_amount"`
	PriceCurrency string    `json:"price_currency"`
	PayCurrency   string    `json:"pay_currency,omitempty"`
	PayAmount     string    `json:"pay_amount,omitempty"`
	PayAddress    string    `json:"pay_address,omitempty"`
	PaymentID     string    `json:"payment_id,omitempty"`
	InvoiceID     string    `json:"invoice_id,omitempty"`
	InvoiceURL    string    `json:"invoice_url,omitempty"`
	ActuallyPaid  string    `json:"actually_paid,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type GatewayStatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type RedeemRequest struct {
	Code             string `json:"code"`
	LightningAddress string `json:"lightningAddress"`
	Email            string `json:"email"`
}

type RedeemResponse struct {
	TransactionID string    `json:"transaction_id"`
	Sats          int64     `json:"sats"`
	Name          string    `json:"name"`
	RedeemedAt    time.Time `json:"redeemed_at"`
}

type RedeemStatusResponse struct {
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Sats       int64      `json:"sats"`
	Redeemed   bool       `json:"redeemed"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}
