package stripe

import (
	"bytes"
	"encoding/json"
)

// Recognized object type tags. Anything else resolves to the safe default.
const (
	objectSubscription    = "subscription"
	objectCheckoutSession = "checkout.session"
	objectInvoice         = "invoice"
	objectInvoicePayment  = "invoice_payment"
	objectPaymentIntent   = "payment_intent"
	objectCharge          = "charge"
)

// ref is a reference to another provider object. Depending on expansion the
// wire value is either a bare ID string or an embedded object; both decode
// to the ID.
type ref struct {
	ID string
}

func (r *ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	return nil
}

type priceRef struct {
	ID string `json:"id"`
}

type subscriptionItem struct {
	Price            priceRef `json:"price"`
	CurrentPeriodEnd int64    `json:"current_period_end"`
}

type invoiceLine struct {
	Period struct {
		End int64 `json:"end"`
	} `json:"period"`
	Price priceRef `json:"price"`
}

// eventObject is our own loose view of the event's data.object. Decoding
// into it instead of the SDK structs keeps the pipeline independent of
// provider API-version drift: every field is optional and unknown fields
// are ignored.
type eventObject struct {
	Object      string                 `json:"object"`
	ID          string                 `json:"id"`
	Metadata    map[string]interface{} `json:"metadata"`
	Description string                 `json:"description"`

	// subscription objects
	CurrentPeriodEnd int64 `json:"current_period_end"`
	Items            struct {
		Data []subscriptionItem `json:"data"`
	} `json:"items"`

	// invoice objects
	PeriodEnd int64 `json:"period_end"`
	Lines     struct {
		Data []invoiceLine `json:"data"`
	} `json:"lines"`

	// references
	Customer     ref `json:"customer"`
	Subscription ref `json:"subscription"`
	Invoice      ref `json:"invoice"`

	// email-bearing positions, in fallback priority order
	CustomerEmail   string `json:"customer_email"`
	ReceiptEmail    string `json:"receipt_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	BillingDetails struct {
		Email string `json:"email"`
	} `json:"billing_details"`
	Charges struct {
		Data []struct {
			BillingDetails struct {
				Email string `json:"email"`
			} `json:"billing_details"`
		} `json:"data"`
	} `json:"charges"`
}

// email returns the first email recoverable from the object's well-known
// provider fields: customer email, receipt email, customer-details email,
// billing-details email, then the first associated charge's billing email.
func (o *eventObject) email() string {
	if o.CustomerEmail != "" {
		return o.CustomerEmail
	}
	if o.ReceiptEmail != "" {
		return o.ReceiptEmail
	}
	if o.CustomerDetails.Email != "" {
		return o.CustomerDetails.Email
	}
	if o.BillingDetails.Email != "" {
		return o.BillingDetails.Email
	}
	if len(o.Charges.Data) > 0 && o.Charges.Data[0].BillingDetails.Email != "" {
		return o.Charges.Data[0].BillingDetails.Email
	}
	return ""
}

// firstPriceID returns the price identifier of the first subscription item.
func (o *eventObject) firstPriceID() string {
	if len(o.Items.Data) > 0 {
		return o.Items.Data[0].Price.ID
	}
	return ""
}
