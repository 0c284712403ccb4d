package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crypto-card-shop/internal/client"
	"crypto-card-shop/internal/handler"
	"crypto-card-shop/internal/ipn"
	"crypto-card-shop/internal/model"
	"crypto-card-shop/internal/repository"
	"crypto-card-shop/internal/service"
	"crypto-card-shop/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testIPNSecret = "server-test-secret"

// offlineGateway keeps endpoint tests off the network.
type offlineGateway struct{}

func (offlineGateway) Status(ctx context.Context) (*model.GatewayStatus, error) {
	return &model.GatewayStatus{Message: "OK"}, nil
}

func (offlineGateway) Currencies(ctx context.Context) ([]string, error) {
	return []string{"btc"}, nil
}

func (offlineGateway) MinAmount(ctx context.Context, currency string) (*model.MinAmount, error) {
	return &model.MinAmount{CurrencyFrom: currency, CurrencyTo: "usd"}, nil
}

func (offlineGateway) Estimate(ctx context.Context, amount decimal.Decimal, currency string) (*model.Estimate, error) {
	return &model.Estimate{CurrencyTo: currency, AmountFrom: amount}, nil
}

func (offlineGateway) CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentResult, error) {
	return &model.PaymentResult{
		PaymentID:     json.Number("1001"),
		PaymentStatus: model.StatusWaiting,
		PayAddress:    "bc1q-test",
		PayAmount:     decimal.RequireFromString("0.052"),
		PayCurrency:   req.PayCurrency,
		OrderID:       req.OrderID,
	}, nil
}

func (offlineGateway) CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.InvoiceResult, error) {
	return &model.InvoiceResult{ID: json.Number("2002"), InvoiceURL: "https://pay.example/2002", OrderID: req.OrderID}, nil
}

func (offlineGateway) PaymentStatus(ctx context.Context, paymentID string) (*model.PaymentResult, error) {
	return &model.PaymentResult{PaymentID: json.Number(paymentID), PaymentStatus: model.StatusWaiting}, nil
}

var _ client.NowPaymentsClient = offlineGateway{}

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	db, err := client.InitSqliteClient("file::memory:")
	require.NoError(t, err)

	cards := repository.NewCardRepository(db)
	orders := repository.NewOrderRepository(db)
	redeems := repository.NewRedeemRepository(db)
	events := repository.NewWebhookEventRepository(db)

	ctx := context.Background()
	require.NoError(t, cards.Seed(ctx))
	require.NoError(t, redeems.Seed(ctx))

	log := logger.NewNop()
	paymentService := service.NewPaymentService(db, offlineGateway{}, "", testIPNSecret,
		cards, orders, events, log)
	redeemService := service.NewRedeemService(redeems, log)

	return NewServer(paymentService, redeemService, log), db
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set(echoHeaderContentType, "application/json")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Set(k, v)
		}
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListCardsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/cards", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cards []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	assert.Len(t, cards, 4)
}

func TestGetOrderNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/order/ORD-0-ghost", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody(t, rec)["error"])
}

func TestEstimateRejectsBadAmount(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/estimate?amount=abc&currency=btc", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeBody(t, rec)["error"])
}

func TestRedeemEndpointThenConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := map[string]string{
		"code":             "NASSR-R7CR-GOLD-2025",
		"lightningAddress": "x@getalby.com",
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/redeem", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 5200000, body["sats"])

	rec = doJSON(t, srv, http.MethodPost, "/api/redeem", payload, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "already_redeemed", body["error"])
	assert.Contains(t, body, "redeemedAt")
}

func TestIPNSignatureMismatch(t *testing.T) {
	srv, db := newTestServer(t)

	// create an order first so a forged IPN would have a target
	rec := doJSON(t, srv, http.MethodPost, "/api/create-payment", map[string]interface{}{
		"playerId": "r7-gold",
		"currency": "btc",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orderID := decodeBody(t, rec)["order_id"].(string)

	header := http.Header{}
	header.Set(handler.SignatureHeader, "deadbeef")
	rec = doJSON(t, srv, http.MethodPost, "/api/ipn", map[string]interface{}{
		"payment_id":     1001,
		"payment_status": model.StatusFinished,
		"order_id":       orderID,
		"actually_paid":  0.052,
	}, header)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "signature_mismatch", decodeBody(t, rec)["error"])

	// order state untouched
	var order model.Order
	require.NoError(t, db.Where("order_id = ?", orderID).First(&order).Error)
	assert.Equal(t, model.StatusWaiting, order.Status)
}

func TestIPNUnknownOrderAcknowledged(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := map[string]interface{}{
		"payment_id":     7,
		"payment_status": model.StatusFinished,
		"order_id":       "ORD-0-never-seen",
		"actually_paid":  0.01,
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	sig, err := ipn.Sign(raw, testIPNSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/ipn", bytes.NewReader(raw))
	req.Header.Set(echoHeaderContentType, "application/json")
	req.Header.Set(handler.SignatureHeader, sig)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/cards", nil)
	req.Header.Set("Origin", "https://storefront.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
