package stripe

import (
	"context"
	"time"

	"github.com/cleardish/entitlements/pkg/entitle"
)

// Resolution is the period resolver's output: the entitlement end date plus
// whatever linked provider identifiers the event carried. PaidUntil is
// always set; when the provider's true period end cannot be determined it
// holds the 30-day default.
type Resolution struct {
	PaidUntil      time.Time
	SubscriptionID string
	CustomerID     string
	PriceID        string
}

// resolvePeriod derives the paid-until timestamp and linked identifiers
// from the event object, dispatching on its type tag. It never fails: a
// missing field, an unknown tag, or an unavailable dependent lookup all
// resolve to the 30-day default with whatever identifiers were directly
// embedded.
func (p *Provider) resolvePeriod(ctx context.Context, obj *eventObject) Resolution {
	res := Resolution{PaidUntil: entitle.DaysFromNow(entitle.FallbackDays)}

	switch obj.Object {
	case objectSubscription:
		res.SubscriptionID = obj.ID
		res.CustomerID = obj.Customer.ID
		res.PriceID = obj.firstPriceID()
		if obj.CurrentPeriodEnd > 0 {
			res.PaidUntil = time.Unix(obj.CurrentPeriodEnd, 0).UTC()
		}

	case objectCheckoutSession:
		res.SubscriptionID = obj.Subscription.ID
		res.CustomerID = obj.Customer.ID
		if res.SubscriptionID == "" {
			break
		}
		sub, err := p.api.FetchSubscription(ctx, res.SubscriptionID)
		if err != nil {
			// Unavailable: keep the default, keep the embedded identifiers.
			p.metrics.RecordAPICall(providerName, "/v1/subscriptions", "error")
			p.logger.Debug("subscription lookup unavailable",
				entitle.Field{Key: "subscription_id", Value: res.SubscriptionID},
				entitle.Field{Key: "error", Value: err.Error()})
			break
		}
		p.metrics.RecordAPICall(providerName, "/v1/subscriptions", "success")
		res.PriceID = sub.PriceID
		if res.CustomerID == "" {
			res.CustomerID = sub.CustomerID
		}
		if sub.PeriodEnd > 0 {
			res.PaidUntil = time.Unix(sub.PeriodEnd, 0).UTC()
		}

	case objectInvoice:
		res.SubscriptionID = obj.Subscription.ID
		res.CustomerID = obj.Customer.ID
		if len(obj.Lines.Data) > 0 {
			line := obj.Lines.Data[0]
			res.PriceID = line.Price.ID
			if line.Period.End > 0 {
				res.PaidUntil = time.Unix(line.Period.End, 0).UTC()
				break
			}
		}
		if obj.PeriodEnd > 0 {
			res.PaidUntil = time.Unix(obj.PeriodEnd, 0).UTC()
		}

	case objectInvoicePayment:
		// Indirection object: only an invoice reference, one lookup away.
		if obj.Invoice.ID == "" {
			break
		}
		inv, err := p.api.FetchInvoice(ctx, obj.Invoice.ID)
		if err != nil {
			p.metrics.RecordAPICall(providerName, "/v1/invoices", "error")
			p.logger.Debug("invoice lookup unavailable",
				entitle.Field{Key: "invoice_id", Value: obj.Invoice.ID},
				entitle.Field{Key: "error", Value: err.Error()})
			break
		}
		p.metrics.RecordAPICall(providerName, "/v1/invoices", "success")
		res.CustomerID = inv.CustomerID
		if inv.PeriodEnd > 0 {
			res.PaidUntil = time.Unix(inv.PeriodEnd, 0).UTC()
		}

	case objectPaymentIntent, objectCharge:
		// Payments carry no period information; only the customer link is
		// worth keeping.
		res.CustomerID = obj.Customer.ID
	}

	return res
}
