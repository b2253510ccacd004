package http

import (
	"context"
	"log/slog"
	"net/http"

	"fulfillment/internal/core/application/deliveryfsm"
	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"

	"github.com/labstack/echo/v4"
)

type ChangeOrderStateHandler interface {
	Handle(ctx context.Context, cmd commands.ChangeOrderStateCommand) (fulfillment.StatusChange, error)
}

type ChangeDeliveryStateHandler interface {
	Handle(ctx context.Context, cmd commands.ChangeDeliveryStateCommand) (deliveryfsm.Response, error)
}

type InitiateCheckoutHandler interface {
	Handle(ctx context.Context, cmd commands.InitiateCheckoutCommand) (payments.Checkout, error)
}

type ConfirmPaymentHandler interface {
	Handle(ctx context.Context, cmd commands.ConfirmPaymentCommand) (payments.Outcome, error)
}

type RefundPaymentHandler interface {
	Handle(ctx context.Context, cmd commands.RefundPaymentCommand) (payments.Outcome, error)
}

type AbandonedTransactionsHandler interface {
	Handle(
		ctx context.Context,
		query queries.GetAbandonedTransactionsQuery,
	) ([]queries.GetAbandonedTransactionsQueryResponse, error)
}

type OrderStateLogHandler interface {
	Handle(ctx context.Context, query queries.GetOrderStateLogQuery) ([]queries.GetOrderStateLogQueryResponse, error)
}

type DeliveryQuoteHandler interface {
	Handle(ctx context.Context, query queries.GetDeliveryQuoteQuery) (queries.GetDeliveryQuoteQueryResponse, error)
}

type GatewayInformationHandler interface {
	Handle(ctx context.Context, query queries.GetGatewayInformationQuery) (ports.GatewayInformation, error)
}

type GatewayTransactionsHandler interface {
	Handle(
		ctx context.Context,
		query queries.GetGatewayTransactionsQuery,
	) ([]queries.GetGatewayTransactionsQueryResponse, error)
}

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	// Command handlers
	ChangeOrderState    ChangeOrderStateHandler
	ChangeDeliveryState ChangeDeliveryStateHandler
	InitiateCheckout    InitiateCheckoutHandler
	ConfirmPayment      ConfirmPaymentHandler
	RefundPayment       RefundPaymentHandler

	// Query handlers
	AbandonedTransactions AbandonedTransactionsHandler
	OrderStateLog         OrderStateLogHandler
	DeliveryQuote         DeliveryQuoteHandler
	GatewayInformation    GatewayInformationHandler
	GatewayTransactions   GatewayTransactionsHandler
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	handlers    Handlers
	environment string
	logger      *slog.Logger
}

// NewServer creates the HTTP server. environment is the credential
// environment used when a checkout request does not name one.
func NewServer(handlers Handlers, environment string, logger *slog.Logger) *Server {
	return &Server{
		handlers:    handlers,
		environment: environment,
		logger:      logger.With("component", "http"),
	}
}

// Register mounts every route on e and installs the request validator.
func (s *Server) Register(e *echo.Echo) {
	e.Validator = NewRequestValidator()

	e.GET("/health", s.Health)

	e.POST("/webhooks/payments/:gateway/:company/:order", s.ConfirmPayment)

	orders := e.Group("/companies/:company/orders/:order")
	orders.POST("/status", s.ChangeOrderState)
	orders.POST("/delivery", s.ChangeDeliveryState)
	orders.POST("/checkout", s.InitiateCheckout)
	orders.POST("/refund", s.RefundPayment)
	orders.GET("/state-log", s.GetOrderStateLog)
	orders.POST("/delivery/quote", s.QuoteDelivery)

	ops := e.Group("/ops")
	ops.GET("/transactions/abandoned", s.GetAbandonedTransactions)
	ops.GET("/gateways/:gateway", s.GetGatewayInformation)
	ops.GET("/gateways/:gateway/transactions", s.GetGatewayTransactions)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}
