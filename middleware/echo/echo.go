// Package echo provides native Echo handlers for the entitlement pipelines,
// for applications already running an Echo instance.
package echo

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cleardish/entitlements/pkg/billing/iap"
	"github.com/cleardish/entitlements/pkg/billing/stripe"
	"github.com/cleardish/entitlements/pkg/entitle"
)

// WebhookHandler returns an Echo handler running the webhook pipeline.
func WebhookHandler(provider *stripe.Provider) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil || len(body) == 0 {
			return c.String(http.StatusBadRequest, "invalid payload")
		}

		outcome, err := provider.ProcessPayload(c.Request().Context(), body, c.Request().Header.Get("Stripe-Signature"))
		if err != nil {
			status, _ := stripe.WebhookStatus(err)
			return c.String(status, err.Error())
		}
		if outcome.Ignored {
			return c.String(http.StatusOK, "ignored")
		}
		return c.String(http.StatusOK, "ok")
	}
}

// ReceiptHandler returns an Echo handler running the receipt pipeline.
func ReceiptHandler(provider *iap.Provider) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := iap.BearerToken(c.Request().Header.Get("Authorization"))
		if token == "" {
			return c.String(http.StatusUnauthorized, "missing authorization token")
		}

		var receipt iap.Receipt
		if err := c.Bind(&receipt); err != nil {
			return c.String(http.StatusBadRequest, "invalid JSON body")
		}

		result, err := provider.ProcessReceipt(c.Request().Context(), token, receipt)
		if err != nil {
			return c.String(iap.ReceiptStatus(err), err.Error())
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":         true,
			"platform":   result.Platform,
			"productId":  result.ProductID,
			"plan":       string(result.Plan),
			"paid_until": entitle.ISO(result.PaidUntil),
			"bypass":     result.Bypass,
		})
	}
}
