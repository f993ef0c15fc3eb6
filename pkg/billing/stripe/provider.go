// Package stripe implements the payment-provider webhook pipeline: a signed
// Stripe event of unknown sub-shape is attributed to an owning account
// through a prioritized chain of extraction strategies, an entitlement
// (plan, paid-until, linked identifiers) is computed with graceful
// degradation, and the result is persisted to the account's auxiliary
// metadata in the identity service.
package stripe

import (
	"net/http"
	"strings"

	"github.com/cleardish/entitlements/pkg/billing"
	"github.com/cleardish/entitlements/pkg/entitle"
	"github.com/cleardish/entitlements/pkg/identity"
)

const providerName = "stripe"

// PriceMap holds the configured price-identifier-to-plan mappings. Empty
// entries are simply never matched.
type PriceMap struct {
	Starter string
	Pro     string
	Plus    string
}

// Config configures the webhook pipeline.
type Config struct {
	// Directory persists the computed entitlement to the owning account's
	// auxiliary metadata. Required.
	Directory identity.Directory

	// Resolver optionally resolves an account by email when no direct
	// identifier is recoverable from the event.
	Resolver *identity.Resolver

	// WebhookSecret is the provider's webhook signing secret. The handler
	// rejects all traffic until it is set.
	WebhookSecret string

	// APIKey is the provider secret key used for dependent lookups
	// (subscription and invoice fetches). Optional: without it every
	// dependent lookup degrades to the 30-day default.
	APIKey string

	// Prices maps configured price identifiers to plan tiers.
	Prices PriceMap

	// API overrides the dependent-lookup client. If nil, a stripe-go backed
	// client is built from APIKey. Tests inject fakes here.
	API ProviderAPI

	// Logger is optional.
	Logger entitle.Logger

	// Metrics is optional.
	Metrics billing.Metrics
}

// Provider implements the billing.Provider interface for Stripe webhooks.
type Provider struct {
	directory     identity.Directory
	resolver      *identity.Resolver
	webhookSecret string
	prices        PriceMap
	api           ProviderAPI
	logger        entitle.Logger
	metrics       billing.Metrics
}

// NewProvider creates a new Stripe webhook provider.
func NewProvider(config Config) (*Provider, error) {
	if config.Directory == nil {
		return nil, billing.ErrNotConfigured
	}

	api := config.API
	if api == nil {
		if key := strings.TrimSpace(config.APIKey); key != "" {
			api = newAPIClient(key)
		} else {
			api = unavailableAPI{}
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = &entitle.NoopLogger{}
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = &billing.NoopMetrics{}
	}

	return &Provider{
		directory:     config.Directory,
		resolver:      config.Resolver,
		webhookSecret: strings.TrimSpace(config.WebhookSecret),
		prices:        config.Prices,
		api:           api,
		logger:        logger,
		metrics:       metrics,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// Handler returns the HTTP handler for Stripe webhooks.
func (p *Provider) Handler() http.Handler {
	return http.HandlerFunc(p.handleWebhook)
}
