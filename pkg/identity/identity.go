// Package identity abstracts the external identity service: bearer-token
// verification, the account directory, and account metadata updates. The
// service itself (token cryptography, user storage) is a black box behind
// these narrow contracts.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken is returned when a bearer token cannot be verified
	ErrInvalidToken = errors.New("invalid access token")

	// ErrAccountNotFound is returned when no account matches a lookup
	ErrAccountNotFound = errors.New("account not found")

	// ErrDirectoryUnavailable is returned when the identity service cannot be reached
	ErrDirectoryUnavailable = errors.New("identity service unavailable")
)

// Account is one account in the identity system.
type Account struct {
	ID    string
	Email string

	// AppMetadata is the account's auxiliary metadata, the persistence
	// target of the webhook pipeline.
	AppMetadata map[string]interface{}
}

// TokenVerifier resolves a bearer token to the account it authenticates.
type TokenVerifier interface {
	// VerifyToken returns the account for accessToken, or ErrInvalidToken.
	VerifyToken(ctx context.Context, accessToken string) (*Account, error)
}

// Directory lists accounts and updates their auxiliary metadata.
type Directory interface {
	// ListAccounts returns one page of accounts. Pages are 1-based. A page
	// shorter than perPage means there are no further pages.
	ListAccounts(ctx context.Context, page, perPage int) ([]*Account, error)

	// UpdateAppMetadata merges patch into the account's auxiliary metadata.
	// Keys absent from patch are left untouched.
	UpdateAppMetadata(ctx context.Context, accountID string, patch map[string]interface{}) error
}
