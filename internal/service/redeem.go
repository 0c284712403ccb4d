package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/dto"
	"crypto-card-shop/internal/model"
	"crypto-card-shop/internal/repository"
	"crypto-card-shop/pkg/logger"
)

type RedeemService interface {
	Redeem(ctx context.Context, req *dto.RedeemRequest) (*model.RedeemCode, error)
	Status(ctx context.Context, code string) (*model.RedeemCode, error)
}

type redeemServiceImpl struct {
	redeemRepo repository.RedeemRepository
	logger     *logger.Logger
}

func NewRedeemService(redeemRepo repository.RedeemRepository, logger *logger.Logger) RedeemService {
	return &redeemServiceImpl{
		redeemRepo: redeemRepo,
		logger:     logger,
	}
}

// newTransactionID mints the receipt id handed back to the redeemer. No
// Lightning payment is dispatched yet; the id is the reference a future
// payout integration will settle against.
func newTransactionID() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return strings.ToUpper(fmt.Sprintf("LNTX-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf)))
}

func (s *redeemServiceImpl) Redeem(ctx context.Context, req *dto.RedeemRequest) (*model.RedeemCode, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, &apperr.InvalidInputError{Reason: "code is required"}
	}
	if req.LightningAddress == "" {
		return nil, &apperr.InvalidInputError{Reason: "lightningAddress is required"}
	}
	if !strings.Contains(req.LightningAddress, "@") {
		return nil, &apperr.InvalidInputError{Reason: "lightningAddress must look like name@domain"}
	}

	record, err := s.redeemRepo.Redeem(ctx, req.Code, req.LightningAddress, req.Email, newTransactionID(), time.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Infow("code redeemed",
		"code", record.Code, "sats", record.Sats, "to", record.RedeemedTo, "transaction_id", record.TransactionID)

	return record, nil
}

func (s *redeemServiceImpl) Status(ctx context.Context, code string) (*model.RedeemCode, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &apperr.InvalidInputError{Reason: "code is required"}
	}
	return s.redeemRepo.FindByCode(ctx, code)
}
