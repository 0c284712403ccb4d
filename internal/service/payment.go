package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/client"
	"crypto-card-shop/internal/dto"
	"crypto-card-shop/internal/ipn"
	"crypto-card-shop/internal/model"
	"crypto-card-shop/internal/repository"
	"crypto-card-shop/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	GatewayStatus(ctx context.Context) (*dto.GatewayStatusResponse, error)
	Currencies(ctx context.Context) ([]string, error)
	MinAmount(ctx context.Context, currency string) (*model.MinAmount, error)
	Estimate(ctx context.Context, amount decimal.Decimal, currency string) (*model.Estimate, error)
	ListCards(ctx context.Context) ([]*model.Card, error)
	CreatePayment(ctx context.Context, req *dto.CreatePaymentRequest) (*model.Order, error)
	CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*model.Order, error)
	PaymentStatus(ctx context.Context, paymentID string) (*model.PaymentResult, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	HandleIPN(ctx context.Context, signature string, body []byte) error
}

type paymentServiceImpl struct {
	db               *gorm.DB
	gateway          client.NowPaymentsClient
	serviceBaseURL   string
	ipnSecret        string
	cardRepo         repository.CardRepository
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	logger           *logger.Logger
}

func NewPaymentService(
	db *gorm.DB,
	gateway client.NowPaymentsClient,
	serviceBaseURL string,
	ipnSecret string,
	cardRepo repository.CardRepository,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	logger *logger.Logger,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		gateway:          gateway,
		serviceBaseURL:   serviceBaseURL,
		ipnSecret:        ipnSecret,
		cardRepo:         cardRepo,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		logger:           logger,
	}
}

// newOrderID builds "ORD-<unix ms>-<card id>". Two orders for the same card
// in the same millisecond would collide; the format is kept because it is
// visible to the gateway and the storefront, so uniqueness stays
// probabilistic rather than guaranteed.
func newOrderID(cardID string) string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), cardID)
}

func (s *paymentServiceImpl) ipnCallbackURL() string {
	if s.serviceBaseURL == "" {
		return ""
	}
	return s.serviceBaseURL + "/api/ipn"
}

// GatewayStatus swallows gateway-side errors into a degraded answer so the
// storefront health badge never breaks. Transport and config failures still
// propagate; only this endpoint is forgiving.
func (s *paymentServiceImpl) GatewayStatus(ctx context.Context) (*dto.GatewayStatusResponse, error) {
	status, err := s.gateway.Status(ctx)
	if err != nil {
		var gatewayErr *apperr.GatewayError
		if errors.As(err, &gatewayErr) {
			s.logger.Warnw("gateway degraded", "status", gatewayErr.Status, "message", gatewayErr.Message)
			return &dto.GatewayStatusResponse{Status: "degraded", Message: gatewayErr.Message}, nil
		}
		return nil, err
	}

	return &dto.GatewayStatusResponse{Status: "ok", Message: status.Message}, nil
}

func (s *paymentServiceImpl) Currencies(ctx context.Context) ([]string, error) {
	return s.gateway.Currencies(ctx)
}

func (s *paymentServiceImpl) MinAmount(ctx context.Context, currency string) (*model.MinAmount, error) {
	if currency == "" {
		return nil, &apperr.InvalidInputError{Reason: "currency is required"}
	}
	return s.gateway.MinAmount(ctx, currency)
}

func (s *paymentServiceImpl) Estimate(ctx context.Context, amount decimal.Decimal, currency string) (*model.Estimate, error) {
	if currency == "" {
		return nil, &apperr.InvalidInputError{Reason: "currency is required"}
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, &apperr.InvalidInputError{Reason: "amount must be positive"}
	}
	return s.gateway.Estimate(ctx, amount, currency)
}

func (s *paymentServiceImpl) ListCards(ctx context.Context) ([]*model.Card, error) {
	return s.cardRepo.List(ctx)
}

// sellableCard validates the request target before any gateway call: the
// card must exist and still be on the shelf, otherwise no order is created.
func (s *paymentServiceImpl) sellableCard(ctx context.Context, cardID string) (*model.Card, error) {
	if cardID == "" {
		return nil, &apperr.InvalidInputError{Reason: "playerId is required"}
	}

	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.Sold {
		return nil, &apperr.InvalidInputError{Reason: "card is already sold"}
	}

	return card, nil
}

func (s *paymentServiceImpl) CreatePayment(ctx context.Context, req *dto.CreatePaymentRequest) (*model.Order, error) {
	if req.Currency == "" {
		return nil, &apperr.InvalidInputError{Reason: "currency is required"}
	}

	card, err := s.sellableCard(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}

	orderID := newOrderID(card.ID)
	price := decimal.NewFromInt(card.Price).Div(decimal.NewFromInt(100))

	result, err := s.gateway.CreatePayment(ctx, &model.CreatePaymentRequest{
		PriceAmount:      price,
		PriceCurrency:    card.Currency,
		PayCurrency:      req.Currency,
		OrderID:          orderID,
		OrderDescription: card.Name,
		IPNCallbackURL:   s.ipnCallbackURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("gateway create payment: %w", err)
	}

	order := &model.Order{
		OrderID:       orderID,
		CardID:        card.ID,
		PriceAmount:   card.Price,
		PriceCurrency: card.Currency,
		PayCurrency:   result.PayCurrency,
		PayAmount:     result.PayAmount.String(),
		PayAddress:    result.PayAddress,
		PaymentID:     result.PaymentID.String(),
		Status:        result.PaymentStatus,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		RedeemOption:  req.RedeemOption,
	}
	if order.Status == "" {
		order.Status = model.StatusWaiting
	}

	if err := s.orderRepo.Create(ctx, s.db, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	s.logger.Infow("payment created",
		"order_id", order.OrderID, "card_id", card.ID, "payment_id", order.PaymentID, "status", order.Status)

	return order, nil
}

func (s *paymentServiceImpl) CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*model.Order, error) {
	card, err := s.sellableCard(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}

	orderID := newOrderID(card.ID)
	price := decimal.NewFromInt(card.Price).Div(decimal.NewFromInt(100))

	result, err := s.gateway.CreateInvoice(ctx, &model.CreateInvoiceRequest{
		PriceAmount:      price,
		PriceCurrency:    card.Currency,
		OrderID:          orderID,
		OrderDescription: card.Name,
		IPNCallbackURL:   s.ipnCallbackURL(),
		SuccessURL:       s.serviceBaseURL,
		CancelURL:        s.serviceBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway create invoice: %w", err)
	}

	order := &model.Order{
		OrderID:       orderID,
		CardID:        card.ID,
		PriceAmount:   card.Price,
		PriceCurrency: card.Currency,
		InvoiceID:     result.ID.String(),
		InvoiceURL:    result.InvoiceURL,
		Status:        model.StatusWaiting,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		RedeemOption:  req.RedeemOption,
	}

	if err := s.orderRepo.Create(ctx, s.db, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	s.logger.Infow("invoice created",
		"order_id", order.OrderID, "card_id", card.ID, "invoice_id", order.InvoiceID)

	return order, nil
}

func (s *paymentServiceImpl) PaymentStatus(ctx context.Context, paymentID string) (*model.PaymentResult, error) {
	if paymentID == "" {
		return nil, &apperr.InvalidInputError{Reason: "paymentId is required"}
	}
	return s.gateway.PaymentStatus(ctx, paymentID)
}

func (s *paymentServiceImpl) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.orderRepo.FindByOrderID(ctx, orderID)
}

// HandleIPN applies one webhook delivery. Deliveries may repeat or arrive
// out of order; the update is last-write-wins and the sold side effect is
// idempotent, so the whole handler is safe to replay.
func (s *paymentServiceImpl) HandleIPN(ctx context.Context, signature string, body []byte) error {
	ok, err := ipn.Verify(body, signature, s.ipnSecret)
	if err != nil {
		return &apperr.InvalidInputError{Reason: "malformed ipn payload"}
	}
	if !ok {
		return apperr.ErrSignatureMismatch
	}

	var payload model.IPNPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return &apperr.InvalidInputError{Reason: "malformed ipn payload"}
	}
	if payload.OrderID == "" {
		return &apperr.InvalidInputError{Reason: "order_id is required"}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, found, err := s.orderRepo.ApplyWebhookUpdate(ctx, tx,
			payload.OrderID, payload.PaymentStatus, payload.ActuallyPaid.String())
		if err != nil {
			return fmt.Errorf("apply webhook update: %w", err)
		}
		if !found {
			// The gateway can deliver before this instance saw the order, or
			// after a restart wiped it. Acknowledge so it stops retrying.
			s.logger.Warnw("ipn for unknown order acknowledged",
				"order_id", payload.OrderID, "status", payload.PaymentStatus)
			return nil
		}

		if model.IsTerminalSuccess(payload.PaymentStatus) {
			if err := s.cardRepo.MarkSold(ctx, tx, order.CardID); err != nil {
				return fmt.Errorf("mark card sold: %w", err)
			}
		}

		if err := s.webhookEventRepo.Record(ctx, tx, payload.PaymentID.String(), payload.OrderID, payload.PaymentStatus); err != nil {
			return fmt.Errorf("record webhook event: %w", err)
		}

		s.logger.Infow("ipn applied",
			"order_id", payload.OrderID, "status", payload.PaymentStatus, "actually_paid", payload.ActuallyPaid.String())
		return nil
	})
}
