package stripe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare id string", `"cus_123"`, "cus_123"},
		{"expanded object", `{"id": "cus_456", "email": "x@y.z"}`, "cus_456"},
		{"null", `null`, ""},
		{"empty object", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r ref
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.want, r.ID)
		})
	}
}

func TestEventObject_EmailFallbackOrder(t *testing.T) {
	full := `{
		"customer_email": "one@example.com",
		"receipt_email": "two@example.com",
		"customer_details": {"email": "three@example.com"},
		"billing_details": {"email": "four@example.com"},
		"charges": {"data": [{"billing_details": {"email": "five@example.com"}}]}
	}`

	var obj eventObject
	require.NoError(t, json.Unmarshal([]byte(full), &obj))
	assert.Equal(t, "one@example.com", obj.email())

	obj.CustomerEmail = ""
	assert.Equal(t, "two@example.com", obj.email())

	obj.ReceiptEmail = ""
	assert.Equal(t, "three@example.com", obj.email())

	obj.CustomerDetails.Email = ""
	assert.Equal(t, "four@example.com", obj.email())

	obj.BillingDetails.Email = ""
	assert.Equal(t, "five@example.com", obj.email())

	obj.Charges.Data = nil
	assert.Empty(t, obj.email())
}

func TestEventObject_UnknownFieldsIgnored(t *testing.T) {
	var obj eventObject
	err := json.Unmarshal([]byte(`{
		"object": "subscription",
		"id": "sub_1",
		"application_fee_percent": null,
		"automatic_tax": {"enabled": true},
		"metadata": {"owner_uid": "abc", "retries": 3}
	}`), &obj)
	require.NoError(t, err)
	assert.Equal(t, "sub_1", obj.ID)
	assert.Equal(t, "abc", obj.Metadata["owner_uid"])
}
