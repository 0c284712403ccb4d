package repository

import (
	"context"
	"errors"
	"time"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	ApplyWebhookUpdate(ctx context.Context, tx *gorm.DB, orderID, status, actuallyPaid string) (*model.Order, bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// ApplyWebhookUpdate overwrites status and actually_paid unconditionally:
// deliveries may repeat or arrive out of order and the last write wins, no
// sequence comparison. An unknown order is reported as found=false, not an
// error, so the caller can acknowledge the delivery anyway.
func (r *orderRepoImpl) ApplyWebhookUpdate(ctx context.Context, tx *gorm.DB, orderID, status, actuallyPaid string) (*model.Order, bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":        status,
			"actually_paid": actuallyPaid,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	var order model.Order
	if err := tx.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, false, err
	}

	return &order, true, nil
}
