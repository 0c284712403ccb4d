package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RedeemRepository interface {
	Seed(ctx context.Context) error
	FindByCode(ctx context.Context, code string) (*model.RedeemCode, error)
	Redeem(ctx context.Context, code, destination, email, transactionID string, now time.Time) (*model.RedeemCode, error)
}

type redeemRepoImpl struct {
	db *gorm.DB
}

func NewRedeemRepository(db *gorm.DB) RedeemRepository {
	return &redeemRepoImpl{
		db: db,
	}
}

// NormalizeCode maps user input onto the stored key form. Codes are issued
// uppercase; lookups tolerate casing and surrounding whitespace.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *redeemRepoImpl) Seed(ctx context.Context) error {
	codes := []model.RedeemCode{
		{Code: "NASSR-R7CR-GOLD-2025", CardID: "r7-gold", Name: "CR7 Gold Edition", Sats: 5200000},
		{Code: "NASSR-R7CR-SILVER-2025", CardID: "r7-silver", Name: "CR7 Silver Edition", Sats: 2600000},
		{Code: "NASSR-R7CR-BRONZE-2025", CardID: "r7-bronze", Name: "CR7 Bronze Edition", Sats: 1300000},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&codes).Error
}

func (r *redeemRepoImpl) FindByCode(ctx context.Context, code string) (*model.RedeemCode, error) {
	var record model.RedeemCode
	err := r.db.WithContext(ctx).
		Where("code = ?", NormalizeCode(code)).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Redeem consumes a code exactly once. The redeemed check and the flip are a
// single guarded UPDATE, so two concurrent attempts on the same code cannot
// both pass; the loser gets AlreadyRedeemedError with the winner's timestamp.
func (r *redeemRepoImpl) Redeem(ctx context.Context, code, destination, email, transactionID string, now time.Time) (*model.RedeemCode, error) {
	normalized := NormalizeCode(code)

	result := r.db.WithContext(ctx).Model(&model.RedeemCode{}).
		Where("code = ? AND redeemed = ?", normalized, false).
		Updates(map[string]interface{}{
			"redeemed":       true,
			"redeemed_at":    now,
			"redeemed_to":    destination,
			"transaction_id": transactionID,
			"email":          email,
			"updated_at":     now,
		})

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		var existing model.RedeemCode
		err := r.db.WithContext(ctx).Where("code = ?", normalized).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		redeemedAt := time.Time{}
		if existing.RedeemedAt != nil {
			redeemedAt = *existing.RedeemedAt
		}
		return nil, &apperr.AlreadyRedeemedError{RedeemedAt: redeemedAt}
	}

	var record model.RedeemCode
	if err := r.db.WithContext(ctx).Where("code = ?", normalized).First(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}
