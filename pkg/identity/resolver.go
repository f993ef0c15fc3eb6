package identity

import (
	"context"
	"strings"

	"github.com/cleardish/entitlements/pkg/entitle"
)

const (
	defaultPageSize = 50
	defaultMaxPages = 10
)

// ResolverConfig bounds the directory scan. Zero values take the defaults.
type ResolverConfig struct {
	// PageSize is the number of accounts fetched per directory page.
	PageSize int

	// MaxPages caps the scan. The scan is O(accounts) in the worst case;
	// the cap keeps a missing email from walking an unexpectedly large
	// directory. This is a scaling limit: deployments beyond
	// PageSize*MaxPages accounts need a server-side email index instead.
	MaxPages int

	// Logger is optional.
	Logger entitle.Logger
}

// Resolver finds accounts by email with a bounded linear scan of the
// directory. Acceptable only because target account populations are small.
type Resolver struct {
	dir      Directory
	pageSize int
	maxPages int
	logger   entitle.Logger
}

// NewResolver creates a Resolver over dir.
func NewResolver(dir Directory, config ResolverConfig) *Resolver {
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPages := config.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	logger := config.Logger
	if logger == nil {
		logger = &entitle.NoopLogger{}
	}
	return &Resolver{dir: dir, pageSize: pageSize, maxPages: maxPages, logger: logger}
}

// FindByEmail returns the first account whose email matches, comparing
// case-insensitively after trimming. It stops at the first match, stops
// early on a short page, and fails soft: an exhausted page bound or a page
// fetch failure both return ("", false) rather than an error, so callers
// fall through to their next strategy.
func (r *Resolver) FindByEmail(ctx context.Context, email string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(email))
	if needle == "" {
		return "", false
	}

	for page := 1; page <= r.maxPages; page++ {
		accounts, err := r.dir.ListAccounts(ctx, page, r.pageSize)
		if err != nil {
			r.logger.Warn("directory page fetch failed",
				entitle.Field{Key: "page", Value: page},
				entitle.Field{Key: "error", Value: err.Error()})
			return "", false
		}

		for _, acct := range accounts {
			if strings.ToLower(strings.TrimSpace(acct.Email)) == needle {
				return acct.ID, true
			}
		}

		if len(accounts) < r.pageSize {
			return "", false
		}
	}

	r.logger.Warn("directory scan exhausted page bound",
		entitle.Field{Key: "max_pages", Value: r.maxPages})
	return "", false
}
