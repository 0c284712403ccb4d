package repository

import (
	"context"
	"errors"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CardRepository interface {
	Seed(ctx context.Context) error
	List(ctx context.Context) ([]*model.Card, error)
	FindByID(ctx context.Context, cardID string) (*model.Card, error)
	MarkSold(ctx context.Context, tx *gorm.DB, cardID string) error
}

type cardRepoImpl struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepoImpl{
		db: db,
	}
}

func (r *cardRepoImpl) Seed(ctx context.Context) error {
	cards := []model.Card{
		{ID: "r7-gold", Name: "CR7 Gold Edition", Price: 520000, Currency: "usd", BTCAmount: "0.052"},
		{ID: "r7-silver", Name: "CR7 Silver Edition", Price: 260000, Currency: "usd", BTCAmount: "0.026"},
		{ID: "r7-bronze", Name: "CR7 Bronze Edition", Price: 130000, Currency: "usd", BTCAmount: "0.013"},
		{ID: "r7-rookie", Name: "CR7 Rookie Reprint", Price: 65000, Currency: "usd", BTCAmount: "0.0065"},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&cards).Error
}

func (r *cardRepoImpl) List(ctx context.Context) ([]*model.Card, error) {
	var cards []*model.Card
	err := r.db.WithContext(ctx).Order("price desc").Find(&cards).Error
	if err != nil {
		return nil, err
	}

	return cards, nil
}

func (r *cardRepoImpl) FindByID(ctx context.Context, cardID string) (*model.Card, error) {
	var card model.Card
	err := r.db.WithContext(ctx).
		Where("id = ?", cardID).
		First(&card).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &card, nil
}

// MarkSold is idempotent: zero rows affected means the card is unknown or
// already sold, both fine. Nothing ever flips sold back to false.
func (r *cardRepoImpl) MarkSold(ctx context.Context, tx *gorm.DB, cardID string) error {
	return tx.WithContext(ctx).Model(&model.Card{}).
		Where("id = ? AND sold = ?", cardID, false).
		Update("sold", true).Error
}
