package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/cleardish/entitlements/pkg/billing"
	"github.com/cleardish/entitlements/pkg/billing/internal"
	"github.com/cleardish/entitlements/pkg/entitle"
	"github.com/cleardish/entitlements/pkg/extract"
)

const webhookBodyLimit = 256 * 1024

// supportedEvents is the fixed allow-list of event types the pipeline
// processes. Anything else is acknowledged but ignored.
var supportedEvents = map[string]bool{
	"checkout.session.completed":    true,
	"invoice.payment_succeeded":     true,
	"payment_intent.succeeded":      true,
	"charge.succeeded":              true,
	"customer.subscription.created": true,
	"customer.subscription.updated": true,
}

// Outcome reports what processing a webhook payload produced.
type Outcome struct {
	// EventType is the provider event type tag.
	EventType string

	// Ignored is true when the event type is outside the allow-list.
	// No processing happened and nothing was persisted.
	Ignored bool

	// OwnerUID is the account the entitlement was attributed to.
	OwnerUID string

	// Record is the persisted entitlement. Record.Plan may be empty when no
	// plan could be inferred; the stored plan is then left untouched.
	Record entitle.Record
}

// ProcessPayload runs the webhook pipeline over a raw signed payload:
// signature verification, event-type filtering, owner attribution, period
// and plan resolution, and persistence. Errors are the package sentinels
// from pkg/billing so callers can map them to transport responses.
func (p *Provider) ProcessPayload(ctx context.Context, payload []byte, sigHeader string) (*Outcome, error) {
	if p.webhookSecret == "" {
		return nil, billing.ErrNotConfigured
	}
	if strings.TrimSpace(sigHeader) == "" {
		return nil, billing.ErrMissingSignature
	}

	event, err := stripe.ConstructEvent(payload, sigHeader, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrInvalidSignature, err)
	}

	eventType := string(event.Type)
	if !supportedEvents[eventType] {
		return &Outcome{EventType: eventType, Ignored: true}, nil
	}

	var obj eventObject
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: event carries no object", billing.ErrInvalidPayload)
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrInvalidPayload, err)
	}

	ownerUID, res := p.attributeOwner(ctx, &obj)
	if ownerUID == "" {
		return nil, billing.ErrUnresolvedOwner
	}

	resolution := p.resolvePeriod(ctx, &obj)

	var plan entitle.Plan
	if res.Plan != "" {
		plan, _ = entitle.OwnerPlan(res.Plan)
	}
	if plan == "" {
		plan, _ = planFromPrice(p.prices, resolution.PriceID)
	}

	record := entitle.Record{
		Plan:           plan,
		PaidUntil:      resolution.PaidUntil,
		SubscriptionID: resolution.SubscriptionID,
		CustomerID:     resolution.CustomerID,
	}

	if err := p.persist(ctx, ownerUID, record); err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrPersistence, err)
	}

	p.metrics.RecordEntitlementUpdate(providerName, string(plan))
	p.logger.Info("entitlement updated",
		entitle.Field{Key: "owner_uid", Value: ownerUID},
		entitle.Field{Key: "event_type", Value: eventType},
		entitle.Field{Key: "plan", Value: string(plan)},
		entitle.Field{Key: "paid_until", Value: entitle.ISO(record.PaidUntil)})

	return &Outcome{EventType: eventType, OwnerUID: ownerUID, Record: record}, nil
}

// attributeOwner runs the owner fallback chain: structured metadata keys,
// then description parsing, then the heuristic metadata scan, and finally
// an email-based directory lookup using the extracted email or the
// provider-object email fields.
func (p *Provider) attributeOwner(ctx context.Context, obj *eventObject) (string, extract.Result) {
	md := extract.MetadataFromMap(obj.Metadata)
	res := extract.Merge(
		extract.FromKnownKeys(md),
		extract.FromDescription(obj.Description),
		extract.FromHeuristics(md),
	)

	if res.OwnerUID != "" {
		return res.OwnerUID, res
	}

	if p.resolver != nil {
		email := res.Email
		if email == "" {
			email = obj.email()
		}
		if email != "" {
			if id, ok := p.resolver.FindByEmail(ctx, email); ok {
				p.logger.Debug("owner resolved by email",
					entitle.Field{Key: "owner_uid", Value: id})
				return id, res
			}
		}
	}

	return "", res
}

// persist merges the entitlement facts into the owning account's auxiliary
// metadata. Optional fields are only written when known, so a degraded
// event never erases a previously stored plan or identifier.
func (p *Provider) persist(ctx context.Context, ownerUID string, record entitle.Record) error {
	patch := map[string]interface{}{
		"owner_paid":       true,
		"owner_paid_until": entitle.ISO(record.PaidUntil),
	}
	if record.Plan != "" {
		patch["owner_plan"] = string(record.Plan)
	}
	if record.SubscriptionID != "" {
		patch["owner_subscription_id"] = record.SubscriptionID
	}
	if record.CustomerID != "" {
		patch["owner_customer_id"] = record.CustomerID
	}
	return p.directory.UpdateAppMetadata(ctx, ownerUID, patch)
}

// handleWebhook processes incoming Stripe webhook requests.
func (p *Provider) handleWebhook(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	setSecurityHeaders(w)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := internal.ReadBodyStrict(w, r, webhookBodyLimit)
	if err != nil {
		if errors.Is(err, internal.ErrPayloadTooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			p.metrics.RecordWebhookError(providerName, "payload_too_large")
		} else {
			http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
			p.metrics.RecordWebhookError(providerName, "invalid_payload")
		}
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		sig = r.Header.Get("stripe-signature")
	}

	outcome, err := p.ProcessPayload(r.Context(), body, sig)
	if err != nil {
		status, errorType := WebhookStatus(err)
		http.Error(w, err.Error(), status)
		p.metrics.RecordWebhookError(providerName, errorType)
		return
	}

	eventType := outcome.EventType
	if eventType == "" {
		eventType = "UNKNOWN"
	}

	w.WriteHeader(http.StatusOK)
	if outcome.Ignored {
		_, _ = w.Write([]byte("ignored"))
		p.metrics.RecordWebhookEvent(providerName, eventType, "ignored")
	} else {
		_, _ = w.Write([]byte("ok"))
		p.metrics.RecordWebhookEvent(providerName, eventType, "success")
	}
	p.metrics.RecordWebhookProcessingDuration(providerName, eventType, time.Since(startTime))
}

// WebhookStatus maps a ProcessPayload error to an HTTP status and a metric
// error type. Shared by the framework adapters.
func WebhookStatus(err error) (int, string) {
	switch {
	case errors.Is(err, billing.ErrNotConfigured):
		return http.StatusInternalServerError, "not_configured"
	case errors.Is(err, billing.ErrMissingSignature),
		errors.Is(err, billing.ErrInvalidSignature):
		return http.StatusBadRequest, "auth_failed"
	case errors.Is(err, billing.ErrInvalidPayload):
		return http.StatusBadRequest, "invalid_payload"
	case errors.Is(err, billing.ErrUnresolvedOwner):
		return http.StatusBadRequest, "unresolved_owner"
	default:
		return http.StatusInternalServerError, "persistence_error"
	}
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
