package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	name string
	hits int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		p.hits++
		w.WriteHeader(http.StatusOK)
	})
}

func TestRegister_DefaultPaths(t *testing.T) {
	webhook := &stubProvider{name: "stripe"}
	receipt := &stubProvider{name: "iap"}

	mux := http.NewServeMux()
	Register(mux, Config{Webhook: webhook, Receipt: receipt})

	for _, path := range []string{DefaultWebhookPath, DefaultReceiptPath} {
		req := httptest.NewRequest(http.MethodPost, path, http.NoBody)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.Equal(t, 1, webhook.hits)
	assert.Equal(t, 1, receipt.hits)
}

func TestRegister_CustomPathsAndNilProvider(t *testing.T) {
	webhook := &stubProvider{name: "stripe"}

	mux := http.NewServeMux()
	Register(mux, Config{Webhook: webhook, WebhookPath: "/hooks/payments"})

	req := httptest.NewRequest(http.MethodPost, "/hooks/payments", http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, DefaultReceiptPath, http.NoBody)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "nil receipt provider must not be mounted")
}
