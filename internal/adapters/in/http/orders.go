package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

var errMalformedRequest = errors.New("malformed path or body")

// bind decodes path params and the JSON body into req and validates it.
func bind(ctx echo.Context, req any) error {
	if err := ctx.Bind(req); err != nil {
		return errMalformedRequest
	}
	return ctx.Validate(req)
}

// ChangeOrderState handles POST /companies/:company/orders/:order/status.
func (s *Server) ChangeOrderState(ctx echo.Context) error {
	var req changeOrderStateRequest
	if err := bind(ctx, &req); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	cmd, err := commands.NewChangeOrderStateCommand(req.Path.OrderID, req.Path.CompanyID, req.Action)
	if err != nil {
		return s.fail(ctx, err)
	}

	change, err := s.handlers.ChangeOrderState.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, newStatusChangeResponse(change))
}

// ChangeDeliveryState handles POST /companies/:company/orders/:order/delivery.
func (s *Server) ChangeDeliveryState(ctx echo.Context) error {
	var req changeDeliveryStateRequest
	if err := bind(ctx, &req); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	cmd, err := commands.NewChangeDeliveryStateCommand(
		req.Path.OrderID, req.Path.CompanyID, req.DriverID, req.Action, req.collect(),
	)
	if err != nil {
		return s.fail(ctx, err)
	}

	resp, err := s.handlers.ChangeDeliveryState.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, newDeliveryResponse(resp))
}

// InitiateCheckout handles POST /companies/:company/orders/:order/checkout.
func (s *Server) InitiateCheckout(ctx echo.Context) error {
	var req initiateCheckoutRequest
	if err := bind(ctx, &req); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	env := req.Environment
	if env == "" {
		env = s.environment
	}

	cmd, err := commands.NewInitiateCheckoutCommand(
		req.Path.OrderID, req.Path.CompanyID, req.Gateway, req.AppCode, env, req.RelatedOrderIDs,
	)
	if err != nil {
		return s.fail(ctx, err)
	}

	checkout, err := s.handlers.InitiateCheckout.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	code := http.StatusCreated
	if checkout.Reused {
		code = http.StatusOK
	}
	return ctx.JSON(code, newCheckoutResponse(checkout))
}

// RefundPayment handles POST /companies/:company/orders/:order/refund.
func (s *Server) RefundPayment(ctx echo.Context) error {
	var req refundRequest
	if err := bind(ctx, &req); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	cmd, err := commands.NewRefundPaymentCommand(req.Path.OrderID, req.Path.CompanyID, req.Reason)
	if err != nil {
		return s.fail(ctx, err)
	}

	outcome, err := s.handlers.RefundPayment.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, newOutcomeResponse(outcome))
}

// GetOrderStateLog handles GET /companies/:company/orders/:order/state-log.
func (s *Server) GetOrderStateLog(ctx echo.Context) error {
	var path orderPath
	if err := bind(ctx, &path); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	query, err := queries.NewGetOrderStateLogQuery(path.OrderID, path.CompanyID)
	if err != nil {
		return s.fail(ctx, err)
	}

	entries, err := s.handlers.OrderStateLog.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, entries)
}

// QuoteDelivery handles POST /companies/:company/orders/:order/delivery/quote.
func (s *Server) QuoteDelivery(ctx echo.Context) error {
	var path orderPath
	if err := bind(ctx, &path); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	query, err := queries.NewGetDeliveryQuoteQuery(path.OrderID, path.CompanyID)
	if err != nil {
		return s.fail(ctx, err)
	}

	quote, err := s.handlers.DeliveryQuote.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, quote)
}
