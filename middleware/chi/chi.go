// Package chi mounts the entitlement pipelines on a chi router.
package chi

import (
	"github.com/go-chi/chi/v5"

	"github.com/cleardish/entitlements/pkg/billing"
)

// Default endpoint paths.
const (
	DefaultWebhookPath = "/webhooks/stripe"
	DefaultReceiptPath = "/iap/verify"
)

// Config holds mount configuration. Either provider may be nil to mount
// only one pipeline.
type Config struct {
	Webhook billing.Provider
	Receipt billing.Provider

	WebhookPath string
	ReceiptPath string
}

// Register mounts the configured pipelines on r.
func Register(r chi.Router, config Config) {
	webhookPath := config.WebhookPath
	if webhookPath == "" {
		webhookPath = DefaultWebhookPath
	}
	receiptPath := config.ReceiptPath
	if receiptPath == "" {
		receiptPath = DefaultReceiptPath
	}

	if config.Webhook != nil {
		r.Method("POST", webhookPath, config.Webhook.Handler())
	}
	if config.Receipt != nil {
		r.Method("POST", receiptPath, config.Receipt.Handler())
	}
}
