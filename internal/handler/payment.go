package handler

import (
	"io"
	"net/http"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/dto"
	"crypto-card-shop/internal/model"
	"crypto-card-shop/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// SignatureHeader carries the gateway's webhook signature.
const SignatureHeader = "x-nowpayments-sig"

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) GatewayStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.paymentService.GatewayStatus(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, status)
}

func (h *PaymentHandler) Currencies(c echo.Context) error {
	ctx := c.Request().Context()

	currencies, err := h.paymentService.Currencies(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string][]string{"currencies": currencies})
}

func (h *PaymentHandler) MinAmount(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.paymentService.MinAmount(ctx, c.Param("currency"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Estimate(c echo.Context) error {
	ctx := c.Request().Context()

	amount, err := decimal.NewFromString(c.QueryParam("amount"))
	if err != nil {
		return &apperr.InvalidInputError{Reason: "amount must be a decimal number"}
	}

	result, err := h.paymentService.Estimate(ctx, amount, c.QueryParam("currency"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) ListCards(c echo.Context) error {
	ctx := c.Request().Context()

	cards, err := h.paymentService.ListCards(ctx)
	if err != nil {
		return err
	}

	resp := make([]*dto.CardResponse, len(cards))
	for i, card := range cards {
		resp[i] = cardResponse(card)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return &apperr.InvalidInputError{Reason: "invalid request body"}
	}

	order, err := h.paymentService.CreatePayment(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderResponse(order))
}

func (h *PaymentHandler) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return &apperr.InvalidInputError{Reason: "invalid request body"}
	}

	order, err := h.paymentService.CreateInvoice(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderResponse(order))
}

func (h *PaymentHandler) PaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.paymentService.PaymentStatus(ctx, c.Param("paymentId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.paymentService.GetOrder(ctx, c.Param("orderId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderResponse(order))
}

func (h *PaymentHandler) IPN(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return &apperr.InvalidInputError{Reason: "unreadable request body"}
	}

	signature := c.Request().Header.Get(SignatureHeader)

	if err := h.paymentService.HandleIPN(ctx, signature, body); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func cardResponse(card *model.Card) *dto.CardResponse {
	return &dto.CardResponse{
		ID:        card.ID,
		Name:      card.Name,
		Price:     card.Price,
		Currency:  card.Currency,
		BTCAmount: card.BTCAmount,
		Sold:      card.Sold,
	}
}

func orderResponse(order *model.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		OrderID:       order.OrderID,
		PlayerID:      order.CardID,
		Status:        order.Status,
		PriceAmount:   order.PriceAmount,
		PriceCurrency: order.PriceCurrency,
		PayCurrency:   order.PayCurrency,
		PayAmount:     order.PayAmount,
		PayAddress:    order.PayAddress,
		PaymentID:     order.PaymentID,
		InvoiceID:     order.InvoiceID,
		InvoiceURL:    order.InvoiceURL,
		ActuallyPaid:  order.ActuallyPaid,
		CreatedAt:     order.CreatedAt,
	}
}
