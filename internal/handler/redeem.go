package handler

import (
	"net/http"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/dto"
	"crypto-card-shop/internal/service"

	"github.com/labstack/echo/v4"
)

type RedeemHandler struct {
	redeemService service.RedeemService
}

func NewRedeemHandler(redeemService service.RedeemService) *RedeemHandler {
	return &RedeemHandler{
		redeemService: redeemService,
	}
}

func (h *RedeemHandler) Redeem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RedeemRequest
	if err := c.Bind(&req); err != nil {
		return &apperr.InvalidInputError{Reason: "invalid request body"}
	}

	record, err := h.redeemService.Redeem(ctx, &req)
	if err != nil {
		return err
	}

	resp := &dto.RedeemResponse{
		TransactionID: record.TransactionID,
		Sats:          record.Sats,
		Name:          record.Name,
	}
	if record.RedeemedAt != nil {
		resp.RedeemedAt = *record.RedeemedAt
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *RedeemHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	record, err := h.redeemService.Status(ctx, c.Param("code"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.RedeemStatusResponse{
		Code:       record.Code,
		Name:       record.Name,
		Sats:       record.Sats,
		Redeemed:   record.Redeemed,
		RedeemedAt: record.RedeemedAt,
	})
}
