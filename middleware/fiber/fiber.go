// Package fiber provides native Fiber handlers for the entitlement
// pipelines, for applications already running a Fiber app.
package fiber

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/cleardish/entitlements/pkg/billing/iap"
	"github.com/cleardish/entitlements/pkg/billing/stripe"
	"github.com/cleardish/entitlements/pkg/entitle"
)

// WebhookHandler returns a Fiber handler running the webhook pipeline.
func WebhookHandler(provider *stripe.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 {
			return c.Status(fiber.StatusBadRequest).SendString("invalid payload")
		}

		outcome, err := provider.ProcessPayload(c.UserContext(), body, c.Get("Stripe-Signature"))
		if err != nil {
			status, _ := stripe.WebhookStatus(err)
			return c.Status(status).SendString(err.Error())
		}
		if outcome.Ignored {
			return c.SendString("ignored")
		}
		return c.SendString("ok")
	}
}

// ReceiptHandler returns a Fiber handler running the receipt pipeline.
func ReceiptHandler(provider *iap.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := iap.BearerToken(c.Get("Authorization"))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).SendString("missing authorization token")
		}

		var receipt iap.Receipt
		if err := json.Unmarshal(c.Body(), &receipt); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("invalid JSON body")
		}

		result, err := provider.ProcessReceipt(c.UserContext(), token, receipt)
		if err != nil {
			return c.Status(iap.ReceiptStatus(err)).SendString(err.Error())
		}

		return c.JSON(fiber.Map{
			"ok":         true,
			"platform":   result.Platform,
			"productId":  result.ProductID,
			"plan":       string(result.Plan),
			"paid_until": entitle.ISO(result.PaidUntil),
			"bypass":     result.Bypass,
		})
	}
}
