// Package http mounts the entitlement pipelines on a standard library
// ServeMux.
package http

import (
	"net/http"

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
	// Webhook is the payment-provider webhook pipeline.
	Webhook billing.Provider

	// Receipt is the in-app-purchase receipt pipeline.
	Receipt billing.Provider

	// WebhookPath overrides DefaultWebhookPath.
	WebhookPath string

	// ReceiptPath overrides DefaultReceiptPath.
	ReceiptPath string
}

// Register mounts the configured pipelines on mux.
func Register(mux *http.ServeMux, config Config) {
	webhookPath := config.WebhookPath
	if webhookPath == "" {
		webhookPath = DefaultWebhookPath
	}
	receiptPath := config.ReceiptPath
	if receiptPath == "" {
		receiptPath = DefaultReceiptPath
	}

	if config.Webhook != nil {
		mux.Handle(webhookPath, config.Webhook.Handler())
	}
	if config.Receipt != nil {
		mux.Handle(receiptPath, config.Receipt.Handler())
	}
}
