package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"crypto-card-shop/internal/apperr"
	"crypto-card-shop/internal/handler"
	"crypto-card-shop/internal/service"
	"crypto-card-shop/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
	redeemHandler  *handler.RedeemHandler
}

func NewServer(paymentService service.PaymentService, redeemService service.RedeemService, log *logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	// Open CORS; the storefront may be served from anywhere. The middleware
	// also short-circuits OPTIONS preflights.
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Infow("request", "method", v.Method, "uri", v.URI, "status", v.Status, "err", v.Error)
			return nil
		},
	}))

	e.HTTPErrorHandler = newHTTPErrorHandler(log)

	e.Static("/", "web")

	s := &Server{
		echo:           e,
		paymentHandler: handler.NewPaymentHandler(paymentService),
		redeemHandler:  handler.NewRedeemHandler(redeemService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/status", s.paymentHandler.GatewayStatus)
	api.GET("/currencies", s.paymentHandler.Currencies)
	api.GET("/min-amount/:currency", s.paymentHandler.MinAmount)
	api.GET("/estimate", s.paymentHandler.Estimate)
	api.GET("/cards", s.paymentHandler.ListCards)

	api.POST("/create-payment", s.paymentHandler.CreatePayment)
	api.POST("/create-invoice", s.paymentHandler.CreateInvoice)
	api.GET("/payment-status/:paymentId", s.paymentHandler.PaymentStatus)
	api.GET("/order/:orderId", s.paymentHandler.GetOrder)

	// -------- gateway webhook --------
	api.POST("/ipn", s.paymentHandler.IPN)

	// -------- redeem codes --------
	api.POST("/redeem", s.redeemHandler.Redeem)
	api.GET("/redeem/:code", s.redeemHandler.Status)
}

// newHTTPErrorHandler renders every error kind as structured JSON with a
// machine field and a human message. No error crashes the process; each
// request is isolated.
func newHTTPErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		machine := "internal_error"
		message := "internal server error"
		var extra map[string]interface{}

		var (
			configErr   *apperr.ConfigError
			networkErr  *apperr.NetworkError
			protocolErr *apperr.ProtocolError
			gatewayErr  *apperr.GatewayError
			inputErr    *apperr.InvalidInputError
			redeemedErr *apperr.AlreadyRedeemedError
			httpErr     *echo.HTTPError
		)

		switch {
		case errors.As(err, &configErr):
			code, machine, message = http.StatusBadGateway, "configuration_error", configErr.Error()
		case errors.As(err, &networkErr):
			code, machine, message = http.StatusBadGateway, "network_error", networkErr.Error()
		case errors.As(err, &protocolErr):
			code, machine, message = http.StatusBadGateway, "protocol_error", protocolErr.Error()
		case errors.As(err, &gatewayErr):
			code, machine, message = http.StatusBadGateway, "gateway_error", gatewayErr.Message
		case errors.As(err, &inputErr):
			code, machine, message = http.StatusBadRequest, "invalid_input", inputErr.Reason
		case errors.As(err, &redeemedErr):
			code, machine, message = http.StatusConflict, "already_redeemed", "code already redeemed"
			extra = map[string]interface{}{"redeemedAt": redeemedErr.RedeemedAt}
		case errors.Is(err, apperr.ErrNotFound):
			code, machine, message = http.StatusNotFound, "not_found", "not found"
		case errors.Is(err, apperr.ErrSignatureMismatch):
			code, machine, message = http.StatusBadRequest, "signature_mismatch", "invalid webhook signature"
		case errors.As(err, &httpErr):
			code, machine, message = httpErr.Code, "http_error", fmt.Sprintf("%v", httpErr.Message)
		default:
			log.Errorw("unhandled error", "err", err)
		}

		body := map[string]interface{}{
			"error":   machine,
			"message": message,
		}
		for k, v := range extra {
			body[k] = v
		}

		if err := c.JSON(code, body); err != nil {
			log.Errorw("write error response", "err", err)
		}
	}
}

// ServeHTTP lets tests drive the server through httptest without binding a
// port.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
