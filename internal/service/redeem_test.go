package service

import (
	"context"
	"strings"
	"testing"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/client"
	"crypto-card-shop/internal/dto"
	"crypto-card-shop/internal/repository"
	"crypto-card-shop/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedeemTestService(t *testing.T) RedeemService {
	t.Helper()

	db, err := client.InitSqliteClient("file::memory:")
	require.NoError(t, err)

	repo := repository.NewRedeemRepository(db)
	require.NoError(t, repo.Seed(context.Background()))

	return NewRedeemService(repo, logger.NewNop())
}

func TestRedeemValidation(t *testing.T) {
	svc := newRedeemTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.RedeemRequest
	}{
		{"missing code", dto.RedeemRequest{LightningAddress: "x@getalby.com"}},
		{"missing address", dto.RedeemRequest{Code: "NASSR-R7CR-GOLD-2025"}},
		{"address without domain", dto.RedeemRequest{Code: "NASSR-R7CR-GOLD-2025", LightningAddress: "lnbc-not-an-address"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Redeem(ctx, &tt.req)
			var inputErr *apperr.InvalidInputError
			assert.ErrorAs(t, err, &inputErr)
		})
	}
}

func TestRedeemHappyPathThenConflict(t *testing.T) {
	svc := newRedeemTestService(t)
	ctx := context.Background()

	record, err := svc.Redeem(ctx, &dto.RedeemRequest{
		Code:             "nassr-r7cr-gold-2025",
		LightningAddress: "x@getalby.com",
		Email:            "fan@example.com",
	})
	require.NoError(t, err)

	assert.EqualValues(t, 5200000, record.Sats)
	assert.True(t, record.Redeemed)
	assert.Equal(t, "fan@example.com", record.Email)
	assert.True(t, strings.HasPrefix(record.TransactionID, "LNTX-"))
	assert.Equal(t, strings.ToUpper(record.TransactionID), record.TransactionID)

	_, err = svc.Redeem(ctx, &dto.RedeemRequest{
		Code:             "NASSR-R7CR-GOLD-2025",
		LightningAddress: "x@getalby.com",
	})
	var already *apperr.AlreadyRedeemedError
	assert.ErrorAs(t, err, &already)
}

func TestRedeemStatusLookup(t *testing.T) {
	svc := newRedeemTestService(t)
	ctx := context.Background()

	record, err := svc.Status(ctx, "NASSR-R7CR-BRONZE-2025")
	require.NoError(t, err)
	assert.False(t, record.Redeemed)
	assert.EqualValues(t, 1300000, record.Sats)

	_, err = svc.Status(ctx, "NASSR-NOPE-0000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
