package model

import "time"

// Payment statuses reported by the gateway. Orders store them verbatim.
const (
	StatusWaiting       = "waiting"
	StatusConfirming    = "confirming"
	StatusConfirmed     = "confirmed"
	StatusSending       = "sending"
	StatusPartiallyPaid = "partially_paid"
	StatusFinished      = "finished"
	StatusFailed        = "failed"
	StatusRefunded      = "refunded"
	StatusExpired       = "expired"
)

// IsTerminalSuccess reports whether a status means the money arrived and the
// card should be taken off the shelf.
func IsTerminalSuccess(status string) bool {
	return status == StatusConfirmed || status == StatusFinished
}

type Card struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	Name      string `gorm:"size:128;not null"`
	Price     int64  `gorm:"not null"` // minor units
	Currency  string `gorm:"size:8;not null"`
	BTCAmount string `gorm:"size:32;not null"` // reference price in BTC, decimal string
	Sold      bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	OrderID       string `gorm:"primaryKey;size:64;not null"`
	CardID        string `gorm:"size:64;index;not null"`
	PriceAmount   int64  `gorm:"not null"`
	PriceCurrency string `gorm:"size:8;not null"`
	PayCurrency   string `gorm:"size:16"`
	PayAmount     string `gorm:"size:32"`
	PayAddress    string `gorm:"size:128"`
	PaymentID     string `gorm:"size:64;index"`
	InvoiceID     string `gorm:"size:64;index"`
	InvoiceURL    string `gorm:"size:256"`
	Status        string `gorm:"size:32;index;not null"`
	ActuallyPaid  string `gorm:"size:32"`
	CustomerName  string `gorm:"size:128"`
	CustomerEmail string `gorm:"size:128"`
	RedeemOption  string `gorm:"size:64"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RedeemCode is a pre-issued voucher for a fixed amount of sats. Codes are
// stored uppercase and are never created or deleted at runtime.
type RedeemCode struct {
	Code          string `gorm:"primaryKey;size:64;not null"`
	CardID        string `gorm:"size:64;index;not null"`
	Name          string `gorm:"size:128;not null"`
	Sats          int64  `gorm:"not null"`
	Redeemed      bool   `gorm:"not null;default:false"`
	RedeemedAt    *time.Time
	RedeemedTo    string `gorm:"size:128"`
	TransactionID string `gorm:"size:64"`
	Email         string `gorm:"size:128"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WebhookEvent is an audit row per accepted IPN delivery. The gateway sends
// no event id, so one is minted locally.
type WebhookEvent struct {
	EventID    string `gorm:"primaryKey;size:64;not null"`
	PaymentID  string `gorm:"size:64;index"`
	OrderID    string `gorm:"size:64;index"`
	Status     string `gorm:"size:32"`
	ReceivedAt time.Time
	CreatedAt  time.Time
}
