package extract

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/cleardish/entitlements/pkg/entitle"
)

var (
	uuidShape    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// IsUUID reports whether s is a canonical hyphenated UUID. The shape check
// rejects the braced, URN, and compact forms uuid.Parse would otherwise
// accept; a value adopted from free text or a heuristic scan must be an
// unmistakable identifier.
func IsUUID(s string) bool {
	if !uuidShape.MatchString(s) {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IsEmail reports whether s looks like a single email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// normalizePlan lowercases s and returns it only if it names an owner plan.
func normalizePlan(s string) string {
	p := strings.ToLower(strings.TrimSpace(s))
	if _, ok := entitle.OwnerPlan(p); ok {
		return p
	}
	return ""
}
