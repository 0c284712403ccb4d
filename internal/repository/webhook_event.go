package repository

import (
	"context"
	"time"

	"crypto-card-shop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	Record(ctx context.Context, tx *gorm.DB, paymentID, orderID, status string) error
}

type webhookEventRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepositoryImpl{db: db}
}

func (r *webhookEventRepositoryImpl) Record(ctx context.Context, tx *gorm.DB, paymentID, orderID, status string) error {
	return tx.WithContext(ctx).Create(&model.WebhookEvent{
		EventID:    uuid.New().String(),
		PaymentID:  paymentID,
		OrderID:    orderID,
		Status:     status,
		ReceivedAt: time.Now(),
	}).Error
}
