// Package gin provides native Gin handlers for the entitlement pipelines,
// for applications already running a Gin engine.
package gin

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleardish/entitlements/pkg/billing/iap"
	"github.com/cleardish/entitlements/pkg/billing/stripe"
	"github.com/cleardish/entitlements/pkg/entitle"
)

// WebhookHandler returns a Gin handler running the webhook pipeline.
func WebhookHandler(provider *stripe.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil || len(body) == 0 {
			c.String(http.StatusBadRequest, "invalid payload")
			return
		}

		outcome, err := provider.ProcessPayload(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
		if err != nil {
			status, _ := stripe.WebhookStatus(err)
			c.String(status, err.Error())
			return
		}
		if outcome.Ignored {
			c.String(http.StatusOK, "ignored")
			return
		}
		c.String(http.StatusOK, "ok")
	}
}

// ReceiptHandler returns a Gin handler running the receipt pipeline.
func ReceiptHandler(provider *iap.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := iap.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.String(http.StatusUnauthorized, "missing authorization token")
			return
		}

		var receipt iap.Receipt
		if err := c.ShouldBindJSON(&receipt); err != nil {
			c.String(http.StatusBadRequest, "invalid JSON body")
			return
		}

		result, err := provider.ProcessReceipt(c.Request.Context(), token, receipt)
		if err != nil {
			c.String(iap.ReceiptStatus(err), err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":         true,
			"platform":   result.Platform,
			"productId":  result.ProductID,
			"plan":       string(result.Plan),
			"paid_until": entitle.ISO(result.PaidUntil),
			"bypass":     result.Bypass,
		})
	}
}
