package extract

import "strings"

// Known metadata keys set by provider-side configuration (payment form
// custom fields). These are trusted and take the highest precedence.
const (
	keyOwnerUID  = "owner_uid"
	keyUID       = "uid"
	keyPlan      = "plan"
	keyOwnerPlan = "owner_plan"
	keyEmail     = "email"
)

// FromKnownKeys reads the well-known metadata keys directly. This is the
// highest-precedence strategy: it trusts explicit provider-side
// configuration without shape checks on the identifier.
func FromKnownKeys(md Metadata) Result {
	var r Result

	if v, ok := md.Get(keyOwnerUID); ok && v != "" {
		r.OwnerUID = v
	} else if v, ok := md.Get(keyUID); ok && v != "" {
		r.OwnerUID = v
	}

	if v, ok := md.Get(keyPlan); ok {
		r.Plan = normalizePlan(v)
	}
	if r.Plan == "" {
		if v, ok := md.Get(keyOwnerPlan); ok {
			r.Plan = normalizePlan(v)
		}
	}

	if v, ok := md.Get(keyEmail); ok {
		if v = strings.TrimSpace(v); IsEmail(v) {
			r.Email = v
		}
	}

	return r
}
