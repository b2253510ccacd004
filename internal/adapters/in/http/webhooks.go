package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

// ConfirmPayment handles POST /webhooks/payments/:gateway/:company/:order.
// The raw body and headers are handed to the gateway for signature checks.
// Declined payments are a successful response with the rejected outcome.
func (s *Server) ConfirmPayment(ctx echo.Context) error {
	var path webhookPath
	if err := (&echo.DefaultBinder{}).BindPathParams(ctx, &path); err != nil {
		return badRequest(ctx, "Invalid request: "+errMalformedRequest.Error())
	}
	if err := ctx.Validate(&path); err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	body, err := io.ReadAll(http.MaxBytesReader(ctx.Response(), ctx.Request().Body, maxWebhookBody))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ctx.JSON(http.StatusRequestEntityTooLarge, Error{
			Code:    http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("Body exceeds %d bytes", tooLarge.Limit),
		})
	}
	if err != nil {
		return badRequest(ctx, "Unreadable body")
	}

	cmd, err := commands.NewConfirmPaymentCommand(
		path.Path.OrderID, path.Path.CompanyID, path.Gateway,
		body, flatten(ctx.Request().Header), authorizationToken(ctx, body),
	)
	if err != nil {
		return s.fail(ctx, err)
	}

	outcome, err := s.handlers.ConfirmPayment.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, newOutcomeResponse(outcome))
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name := range h {
		out[name] = h.Get(name)
	}
	return out
}

// authorizationToken reads the one-time token form-posting gateways send
// back instead of a JSON body.
func authorizationToken(ctx echo.Context, body []byte) string {
	if token := ctx.QueryParam("token"); token != "" {
		return token
	}
	if !strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm) {
		return ""
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return ""
	}
	if token := form.Get("transactionToken"); token != "" {
		return token
	}
	return form.Get("token")
}
