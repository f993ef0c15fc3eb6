package extract

import "regexp"

// Labeled patterns a payment form can embed in the free-text description
// when no custom metadata fields are available. Matching is
// case-insensitive and whitespace-tolerant, and each field is matched
// independently: absence of one label does not block the others.
var (
	descOwnerUID = regexp.MustCompile(`(?i)owner_uid\s*=\s*([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`)
	descPlan     = regexp.MustCompile(`(?i)plan\s*=\s*(starter|pro|plus)`)
	descEmail    = regexp.MustCompile(`(?i)email\s*=\s*([^@\s]+@[^@\s]+\.[^@\s,;]+)`)
)

// FromDescription scans a free-text description for the labeled
// owner_uid/plan/email patterns. The identifier must be canonical UUID
// shaped; anything else in free text is too easy to misread.
func FromDescription(description string) Result {
	var r Result
	if description == "" {
		return r
	}

	if m := descOwnerUID.FindStringSubmatch(description); m != nil {
		r.OwnerUID = m[1]
	}
	if m := descPlan.FindStringSubmatch(description); m != nil {
		r.Plan = normalizePlan(m[1])
	}
	if m := descEmail.FindStringSubmatch(description); m != nil {
		r.Email = m[1]
	}
	return r
}
