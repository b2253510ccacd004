package http

import (
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/payment"

	"github.com/labstack/echo/v4"
)

const defaultAbandonedLimit = 100

// GetAbandonedTransactions handles GET /ops/transactions/abandoned.
// Lists payment transactions that expired while still pending.
func (s *Server) GetAbandonedTransactions(ctx echo.Context) error {
	var req abandonedTransactionsRequest
	if err := bind(ctx, &req); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	var gateway payment.GatewayCode
	if req.Gateway != "" {
		code, err := payment.ParseGatewayCode(req.Gateway)
		if err != nil {
			return s.fail(ctx, err)
		}
		gateway = code
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultAbandonedLimit
	}

	query, err := queries.NewGetAbandonedTransactionsQuery(gateway, time.Now().UTC(), limit)
	if err != nil {
		return s.fail(ctx, err)
	}

	rows, err := s.handlers.AbandonedTransactions.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, rows)
}

// GetGatewayInformation handles GET /ops/gateways/:gateway.
func (s *Server) GetGatewayInformation(ctx echo.Context) error {
	var path gatewayPath
	if err := bind(ctx, &path); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	query, err := queries.NewGetGatewayInformationQuery(path.Gateway)
	if err != nil {
		return s.fail(ctx, err)
	}

	info, err := s.handlers.GatewayInformation.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, info)
}

// GetGatewayTransactions handles GET /ops/gateways/:gateway/transactions.
// Lists what the gateway recorded for a tenant in [from, to), both RFC 3339.
func (s *Server) GetGatewayTransactions(ctx echo.Context) error {
	var req gatewayTransactionsRequest
	if err := bind(ctx, &req); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	from, err := time.Parse(time.RFC3339, req.From)
	if err != nil {
		return badRequest(ctx, "Invalid request: from must be RFC 3339")
	}
	to, err := time.Parse(time.RFC3339, req.To)
	if err != nil {
		return badRequest(ctx, "Invalid request: to must be RFC 3339")
	}

	env := req.Environment
	if env == "" {
		env = s.environment
	}

	query, err := queries.NewGetGatewayTransactionsQuery(
		req.Path.Gateway, req.CompanyID, req.AppCode, env, from.UTC(), to.UTC(),
	)
	if err != nil {
		return s.fail(ctx, err)
	}

	rows, err := s.handlers.GatewayTransactions.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, rows)
}
