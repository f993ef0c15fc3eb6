// Package iap implements the mobile in-app-purchase receipt pipeline: an
// authenticated caller submits a purchase receipt, the plan and validity
// period are derived from the product identifier, and the result is
// persisted against that exact caller's profile.
//
// Genuine store verification (Google Play Developer API / App Store Server
// API) is not wired up. The pipeline fails closed until it is, unless the
// test-only bypass flag is enabled.
package iap

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cleardish/entitlements/pkg/billing"
	"github.com/cleardish/entitlements/pkg/entitle"
	"github.com/cleardish/entitlements/pkg/identity"
)

const providerName = "iap"

// Config configures the receipt pipeline.
type Config struct {
	// Verifier resolves the caller's bearer token to an account. Required.
	Verifier identity.TokenVerifier

	// Profiles persists the caller's subscription profile. Required.
	Profiles entitle.ProfileStore

	// BypassVerify accepts any receipt without store verification. Test
	// deployments only; with it off every receipt is rejected with
	// ErrVerificationNotConfigured.
	BypassVerify bool

	// Logger is optional.
	Logger entitle.Logger

	// Metrics is optional.
	Metrics billing.Metrics
}

// Provider implements the billing.Provider interface for purchase receipts.
type Provider struct {
	verifier identity.TokenVerifier
	profiles entitle.ProfileStore
	bypass   bool
	logger   entitle.Logger
	metrics  billing.Metrics
	now      func() time.Time
}

// NewProvider creates a new receipt pipeline provider.
func NewProvider(config Config) (*Provider, error) {
	if config.Verifier == nil || config.Profiles == nil {
		return nil, billing.ErrNotConfigured
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
		verifier: config.Verifier,
		profiles: config.Profiles,
		bypass:   config.BypassVerify,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// Handler returns the HTTP handler for receipt verification.
func (p *Provider) Handler() http.Handler {
	return http.HandlerFunc(p.handleVerify)
}

// Receipt is a client-submitted purchase receipt.
type Receipt struct {
	Platform         string `json:"platform"`
	ProductID        string `json:"product_id"`
	VerificationData string `json:"verification_data,omitempty"`
}

// Result is the outcome of a processed receipt.
type Result struct {
	UserID    string
	Platform  string
	ProductID string
	Plan      entitle.Plan
	PaidUntil time.Time
	Bypass    bool
}

// ProcessReceipt verifies the caller, derives the plan from the product
// identifier, and persists the profile. Identity is supplied by the caller's
// token; no discovery is needed on this path, and no provider-side period
// data is consulted: a product id containing "year" grants a yearly plan
// valid 365 days, anything else a monthly plan valid 30 days.
func (p *Provider) ProcessReceipt(ctx context.Context, accessToken string, receipt Receipt) (*Result, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, billing.ErrMissingToken
	}

	account, err := p.verifier.VerifyToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(receipt.ProductID) == "" {
		return nil, billing.ErrMissingProductID
	}

	if !p.bypass {
		return nil, billing.ErrVerificationNotConfigured
	}

	plan := entitle.PlanMonthly
	days := entitle.FallbackDays
	if strings.Contains(strings.ToLower(receipt.ProductID), "year") {
		plan = entitle.PlanYearly
		days = entitle.YearlyDays
	}
	paidUntil := p.now().UTC().AddDate(0, 0, days)

	if err := p.profiles.SetSubscription(ctx, account.ID, plan, paidUntil); err != nil {
		return nil, err
	}

	p.metrics.RecordEntitlementUpdate(providerName, string(plan))
	p.logger.Info("receipt accepted",
		entitle.Field{Key: "user_id", Value: account.ID},
		entitle.Field{Key: "platform", Value: receipt.Platform},
		entitle.Field{Key: "product_id", Value: receipt.ProductID},
		entitle.Field{Key: "plan", Value: string(plan)})

	return &Result{
		UserID:    account.ID,
		Platform:  receipt.Platform,
		ProductID: receipt.ProductID,
		Plan:      plan,
		PaidUntil: paidUntil,
		Bypass:    true,
	}, nil
}
