package billing

import "time"

// Metrics defines the interface for tracking pipeline operations.
// All methods are optional - providers should gracefully handle nil metrics.
type Metrics interface {
	// RecordWebhookEvent records a webhook event received from the payment provider.
	// status: "success", "ignored" or "error"
	RecordWebhookEvent(provider, eventType, status string)

	// RecordWebhookProcessingDuration records how long it took to process a webhook.
	RecordWebhookProcessingDuration(provider, eventType string, duration time.Duration)

	// RecordWebhookError records a webhook processing error.
	// errorType: e.g. "auth_failed", "invalid_payload", "unresolved_owner"
	RecordWebhookError(provider, errorType string)

	// RecordReceiptVerification records a receipt verification attempt.
	// status: "success" or "error"
	RecordReceiptVerification(provider, platform, status string)

	// RecordEntitlementUpdate records a persisted entitlement change.
	RecordEntitlementUpdate(provider, plan string)

	// RecordAPICall records a dependent lookup against an external collaborator.
	// endpoint: e.g. "/v1/subscriptions", "/admin/users"
	// status: "success" or "error"
	RecordAPICall(provider, endpoint, status string)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordWebhookEvent(_, _, _ string)                            {}
func (n *NoopMetrics) RecordWebhookProcessingDuration(_, _ string, _ time.Duration) {}
func (n *NoopMetrics) RecordWebhookError(_, _ string)                               {}
func (n *NoopMetrics) RecordReceiptVerification(_, _, _ string)                     {}
func (n *NoopMetrics) RecordEntitlementUpdate(_, _ string)                          {}
func (n *NoopMetrics) RecordAPICall(_, _, _ string)                                 {}
