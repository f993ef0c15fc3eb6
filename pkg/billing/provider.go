// Package billing holds the plumbing shared by the two entitlement
// pipelines: the provider contract, sentinel errors, metrics, and common
// configuration.
package billing

import "net/http"

// Provider is the common surface of an entitlement pipeline. The stripe
// provider reconciles payment-provider webhook events; the iap provider
// reconciles mobile purchase receipts.
type Provider interface {
	// Name returns the provider name (e.g. "stripe", "iap").
	Name() string

	// Handler returns the HTTP handler for the provider's inbound endpoint.
	// The implementation performs authentication, parsing, reconciliation,
	// and persistence internally.
	Handler() http.Handler
}
