package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"
)

// SubscriptionInfo is the subset of a fetched subscription the period
// resolver needs.
type SubscriptionInfo struct {
	ID         string
	PeriodEnd  int64
	CustomerID string
	PriceID    string
}

// InvoiceInfo is the subset of a fetched invoice the period resolver needs.
type InvoiceInfo struct {
	ID         string
	PeriodEnd  int64
	CustomerID string
}

// ProviderAPI performs dependent lookups against the payment provider. Any
// returned error is treated as "no period information" by the resolver,
// never surfaced as a request failure.
type ProviderAPI interface {
	FetchSubscription(ctx context.Context, id string) (*SubscriptionInfo, error)
	FetchInvoice(ctx context.Context, id string) (*InvoiceInfo, error)
}

// apiClient implements ProviderAPI with the stripe-go client.
type apiClient struct {
	client *stripe.Client
}

func newAPIClient(apiKey string) *apiClient {
	return &apiClient{client: stripe.NewClient(apiKey)}
}

func (a *apiClient) FetchSubscription(ctx context.Context, id string) (*SubscriptionInfo, error) {
	sub, err := a.client.V1Subscriptions.Retrieve(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}

	info := &SubscriptionInfo{ID: sub.ID}
	if sub.Customer != nil {
		info.CustomerID = sub.Customer.ID
	}
	// The period end lives on the subscription items in current API
	// versions. Take the first item carrying one.
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item == nil {
				continue
			}
			if info.PriceID == "" && item.Price != nil {
				info.PriceID = item.Price.ID
			}
			if info.PeriodEnd == 0 && item.CurrentPeriodEnd > 0 {
				info.PeriodEnd = item.CurrentPeriodEnd
			}
		}
	}
	return info, nil
}

func (a *apiClient) FetchInvoice(ctx context.Context, id string) (*InvoiceInfo, error) {
	inv, err := a.client.V1Invoices.Retrieve(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}

	info := &InvoiceInfo{ID: inv.ID, PeriodEnd: inv.PeriodEnd}
	if inv.Customer != nil {
		info.CustomerID = inv.Customer.ID
	}
	if inv.Lines != nil {
		for _, line := range inv.Lines.Data {
			if line != nil && line.Period != nil && line.Period.End > 0 {
				info.PeriodEnd = line.Period.End
				break
			}
		}
	}
	return info, nil
}

// unavailableAPI is used when no provider API key is configured. Every
// lookup reports unavailable, which the resolver turns into the safe
// default.
type unavailableAPI struct{}

func (unavailableAPI) FetchSubscription(context.Context, string) (*SubscriptionInfo, error) {
	return nil, fmt.Errorf("provider API key not configured")
}

func (unavailableAPI) FetchInvoice(context.Context, string) (*InvoiceInfo, error) {
	return nil, fmt.Errorf("provider API key not configured")
}
