package iap

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cleardish/entitlements/pkg/billing"
	"github.com/cleardish/entitlements/pkg/billing/internal"
	"github.com/cleardish/entitlements/pkg/entitle"
	"github.com/cleardish/entitlements/pkg/identity"
)

const verifyBodyLimit = 64 * 1024

// verifyResponse is the success body of the receipt endpoint.
type verifyResponse struct {
	OK        bool   `json:"ok"`
	Platform  string `json:"platform"`
	ProductID string `json:"productId"`
	Plan      string `json:"plan"`
	PaidUntil string `json:"paid_until"`
	Bypass    bool   `json:"bypass"`
}

// BearerToken extracts the bearer token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// handleVerify processes incoming receipt verification requests.
func (p *Provider) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		p.metrics.RecordReceiptVerification(providerName, "unknown", "error")
		return
	}

	body, err := internal.ReadBodyStrict(w, r, verifyBodyLimit)
	if err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		p.metrics.RecordReceiptVerification(providerName, "unknown", "error")
		return
	}

	var receipt Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		p.metrics.RecordReceiptVerification(providerName, "unknown", "error")
		return
	}

	platform := receipt.Platform
	if platform == "" {
		platform = "unknown"
	}

	result, err := p.ProcessReceipt(r.Context(), token, receipt)
	if err != nil {
		http.Error(w, err.Error(), ReceiptStatus(err))
		p.metrics.RecordReceiptVerification(providerName, platform, "error")
		return
	}

	p.metrics.RecordReceiptVerification(providerName, platform, "success")
	_ = internal.WriteJSON(w, http.StatusOK, verifyResponse{
		OK:        true,
		Platform:  result.Platform,
		ProductID: result.ProductID,
		Plan:      string(result.Plan),
		PaidUntil: entitle.ISO(result.PaidUntil),
		Bypass:    result.Bypass,
	})
}

// ReceiptStatus maps a ProcessReceipt error to an HTTP status. Shared by
// the framework adapters.
func ReceiptStatus(err error) int {
	switch {
	case errors.Is(err, billing.ErrMissingToken),
		errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, billing.ErrMissingProductID),
		errors.Is(err, billing.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, billing.ErrVerificationNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
