package billing

import "errors"

// Sentinel errors returned by the pipeline entry points. Framework adapters
// map them to HTTP statuses with errors.Is; anything unmatched is an
// internal failure.
var (
	// ErrNotConfigured is returned when a required secret or collaborator is missing
	ErrNotConfigured = errors.New("billing provider not configured")

	// ErrMissingSignature is returned when the provider signature header is absent
	ErrMissingSignature = errors.New("missing webhook signature")

	// ErrInvalidSignature is returned when webhook signature verification fails
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidPayload is returned when a request body cannot be parsed
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrMissingToken is returned when the bearer token is absent
	ErrMissingToken = errors.New("missing authorization token")

	// ErrMissingProductID is returned when a receipt omits the product id
	ErrMissingProductID = errors.New("missing product_id")

	// ErrVerificationNotConfigured is returned when receipt verification is
	// not set up and the bypass flag is off. The receipt pipeline fails
	// closed rather than accept unverified purchases.
	ErrVerificationNotConfigured = errors.New("purchase verification not configured")

	// ErrUnresolvedOwner is returned when no strategy could attribute a
	// webhook event to an account. This is a reportable client error: the
	// provider side should be configured to supply resolvable metadata.
	ErrUnresolvedOwner = errors.New("could not resolve owner account from event")

	// ErrPersistence is returned when the downstream entitlement write fails
	ErrPersistence = errors.New("entitlement persistence failed")
)
