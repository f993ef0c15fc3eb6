package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripesdk "github.com/stripe/stripe-go/v83"

	"github.com/cleardish/entitlements/pkg/billing"
	"github.com/cleardish/entitlements/pkg/entitle"
	"github.com/cleardish/entitlements/pkg/identity"
)

const (
	testSecret = "whsec_test_secret"
	ownerUID   = "0b6f1c34-9a2d-4f08-b1e5-6c7d8e9f0a1b"
)

// signPayload builds a valid Stripe-Signature header for payload.
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id": "evt_1", "object": "event", "api_version": %q, "type": %q, "data": {"object": %s}}`, stripesdk.APIVersion, eventType, object))
}

func TestProcessPayload_CheckoutSessionWithMetadata(t *testing.T) {
	dir := &recordingDirectory{}
	p := newTestProvider(t, Config{Directory: dir, WebhookSecret: testSecret})

	payload := eventPayload("checkout.session.completed", fmt.Sprintf(`{
		"object": "checkout.session",
		"id": "cs_1",
		"customer": "cus_77",
		"metadata": {"owner_uid": %q, "plan": "pro"}
	}`, ownerUID))

	outcome, err := p.ProcessPayload(context.Background(), payload, signPayload(payload, testSecret))
	require.NoError(t, err)
	assert.False(t, outcome.Ignored)
	assert.Equal(t, ownerUID, outcome.OwnerUID)
	assert.Equal(t, entitle.PlanPro, outcome.Record.Plan)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 30), outcome.Record.PaidUntil, 5*time.Second)

	patch := dir.patches[ownerUID]
	require.NotNil(t, patch, "entitlement must be persisted to the owner's metadata")
	assert.Equal(t, true, patch["owner_paid"])
	assert.Equal(t, "pro", patch["owner_plan"])
	assert.Equal(t, "cus_77", patch["owner_customer_id"])
	assert.NotEmpty(t, patch["owner_paid_until"])
	_, hasSub := patch["owner_subscription_id"]
	assert.False(t, hasSub, "unknown identifiers must not be written")
}

func TestProcessPayload_SubscriptionWithDescription(t *testing.T) {
	dir := &recordingDirectory{}
	p := newTestProvider(t, Config{Directory: dir, WebhookSecret: testSecret})

	periodEnd := time.Now().Add(45 * 24 * time.Hour).Unix()
	payload := eventPayload("customer.subscription.updated", fmt.Sprintf(`{
		"object": "subscription",
		"id": "sub_9",
		"customer": "cus_9",
		"description": "owner_uid=%s plan=starter",
		"current_period_end": %d
	}`, ownerUID, periodEnd))

	outcome, err := p.ProcessPayload(context.Background(), payload, signPayload(payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, ownerUID, outcome.OwnerUID)
	assert.Equal(t, entitle.PlanStarter, outcome.Record.Plan)
	assert.Equal(t, time.Unix(periodEnd, 0).UTC(), outcome.Record.PaidUntil)
	assert.Equal(t, "sub_9", outcome.Record.SubscriptionID)

	patch := dir.patches[ownerUID]
	require.NotNil(t, patch)
	assert.Equal(t, "starter", patch["owner_plan"])
	assert.Equal(t, "sub_9", patch["owner_subscription_id"])
	assert.Equal(t, entitle.ISO(time.Unix(periodEnd, 0)), patch["owner_paid_until"])
}

func TestProcessPayload_UnsupportedTypeIgnored(t *testing.T) {
	dir := &recordingDirectory{}
	p := newTestProvider(t, Config{Directory: dir, WebhookSecret: testSecret})

	payload := eventPayload("customer.subscription.deleted", `{"object": "subscription", "id": "sub_1"}`)

	outcome, err := p.ProcessPayload(context.Background(), payload, signPayload(payload, testSecret))
	require.NoError(t, err)
	assert.True(t, outcome.Ignored)
	assert.Empty(t, dir.patches, "ignored events must not touch the directory")
}

func TestProcessPayload_PlanFromPriceMap(t *testing.T) {
	dir := &recordingDirectory{}
	p := newTestProvider(t, Config{
		Directory:     dir,
		WebhookSecret: testSecret,
		Prices:        PriceMap{Plus: "price_plus_v1"},
	})

	payload := eventPayload("customer.subscription.created", fmt.Sprintf(`{
		"object": "subscription",
		"id": "sub_2",
		"metadata": {"owner_uid": %q},
		"items": {"data": [{"price": {"id": "price_plus_v1"}}]}
	}`, ownerUID))

	outcome, err := p.ProcessPayload(context.Background(), payload, signPayload(payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, entitle.PlanPlus, outcome.Record.Plan)
}

func TestProcessPayload_NoPlanLeavesExistingUntouched(t *testing.T) {
	dir := &recordingDirectory{}
	p := newTestProvider(t, Config{Directory: dir, WebhookSecret: testSecret})

	payload := eventPayload("payment_intent.succeeded", fmt.Sprintf(`{
		"object": "payment_intent",
		"id": "pi_1",
		"metadata": {"owner_uid": %q}
	}`, ownerUID))

	outcome, err := p.ProcessPayload(context.Background(), payload, signPayload(payload, testSecret))
	require.NoError(t, err)
	assert.Empty(t, outcome.Record.Plan)

	patch := dir.patches[ownerUID]
	require.NotNil(t, patch)
	_, hasPlan := patch["owner_plan"]
	assert.False(t, hasPlan, "an unknown plan must not overwrite the stored one")
	assert.Equal(t, true, patch["owner_paid"])
}

func TestProcessPayload_EmailDirectoryLookup(t *testing.T) {
	dir := &recordingDirectory{accounts: []*identity.Account{
		{ID: "acct-match", Email: "Buyer@Example.com"},
	}}
	p := newTestProvider(t, Config{
		Directory:     dir,
		Resolver:      identity.NewResolver(dir, identity.ResolverConfig{}),
		WebhookSecret: testSecret,
	})

	payload := eventPayload("charge.succeeded", `{
		"object": "charge",
		"id": "ch_1",
		"receipt_email": "buyer@example.com"
	}`)

	outcome, err := p.ProcessPayload(context.Background(), payload, signPayload(payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "acct-match", outcome.OwnerUID)
}

func TestProcessPayload_UnresolvedOwner(t *testing.T) {
	p := newTestProvider(t, Config{Directory: &recordingDirectory{}, WebhookSecret: testSecret})

	payload := eventPayload("charge.succeeded", `{"object": "charge", "id": "ch_1"}`)

	_, err := p.ProcessPayload(context.Background(), payload, signPayload(payload, testSecret))
	assert.ErrorIs(t, err, billing.ErrUnresolvedOwner)
}

func TestProcessPayload_SignatureErrors(t *testing.T) {
	p := newTestProvider(t, Config{Directory: &recordingDirectory{}, WebhookSecret: testSecret})
	payload := eventPayload("charge.succeeded", `{"object": "charge"}`)

	_, err := p.ProcessPayload(context.Background(), payload, "")
	assert.ErrorIs(t, err, billing.ErrMissingSignature)

	_, err = p.ProcessPayload(context.Background(), payload, signPayload(payload, "whsec_wrong"))
	assert.ErrorIs(t, err, billing.ErrInvalidSignature)

	tampered := append([]byte{}, payload...)
	sig := signPayload(payload, testSecret)
	tampered[len(tampered)-2] = 'x'
	_, err = p.ProcessPayload(context.Background(), tampered, sig)
	assert.ErrorIs(t, err, billing.ErrInvalidSignature)
}

func TestProcessPayload_NotConfigured(t *testing.T) {
	p := newTestProvider(t, Config{Directory: &recordingDirectory{}})

	_, err := p.ProcessPayload(context.Background(), []byte(`{}`), "t=1,v1=abc")
	assert.ErrorIs(t, err, billing.ErrNotConfigured)
}

func TestProcessPayload_PersistenceFailure(t *testing.T) {
	dir := &recordingDirectory{failNext: true}
	p := newTestProvider(t, Config{Directory: dir, WebhookSecret: testSecret})

	payload := eventPayload("checkout.session.completed", fmt.Sprintf(`{
		"object": "checkout.session",
		"metadata": {"owner_uid": %q}
	}`, ownerUID))

	_, err := p.ProcessPayload(context.Background(), payload, signPayload(payload, testSecret))
	assert.ErrorIs(t, err, billing.ErrPersistence)
}

func TestHandleWebhook_HTTP(t *testing.T) {
	dir := &recordingDirectory{}
	p := newTestProvider(t, Config{Directory: dir, WebhookSecret: testSecret})
	handler := p.Handler()

	post := func(payload []byte, sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(string(payload)))
		if sig != "" {
			req.Header.Set("Stripe-Signature", sig)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("processed event returns ok", func(t *testing.T) {
		payload := eventPayload("checkout.session.completed", fmt.Sprintf(`{
			"object": "checkout.session",
			"metadata": {"owner_uid": %q, "plan": "pro"}
		}`, ownerUID))

		w := post(payload, signPayload(payload, testSecret))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("unsupported event returns ignored", func(t *testing.T) {
		payload := eventPayload("customer.created", `{"object": "customer", "id": "cus_1"}`)

		w := post(payload, signPayload(payload, testSecret))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ignored", w.Body.String())
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		payload := eventPayload("charge.succeeded", `{"object": "charge"}`)

		w := post(payload, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/webhooks/stripe", http.NoBody)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestWebhookStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantType   string
	}{
		{billing.ErrNotConfigured, http.StatusInternalServerError, "not_configured"},
		{billing.ErrMissingSignature, http.StatusBadRequest, "auth_failed"},
		{billing.ErrInvalidSignature, http.StatusBadRequest, "auth_failed"},
		{billing.ErrInvalidPayload, http.StatusBadRequest, "invalid_payload"},
		{billing.ErrUnresolvedOwner, http.StatusBadRequest, "unresolved_owner"},
		{billing.ErrPersistence, http.StatusInternalServerError, "persistence_error"},
	}

	for _, tt := range tests {
		status, errorType := WebhookStatus(tt.err)
		assert.Equal(t, tt.wantStatus, status, "%v", tt.err)
		assert.Equal(t, tt.wantType, errorType, "%v", tt.err)
	}
}
