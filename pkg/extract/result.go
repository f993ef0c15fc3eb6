package extract

// Result is the common output of every extraction strategy. All fields are
// independently optional; an empty field means the strategy could not
// recover it, which is not an error.
type Result struct {
	// OwnerUID is the account identifier the event applies to. When sourced
	// from free text or the heuristic scan it is always canonical UUID
	// shaped, to avoid false positives.
	OwnerUID string

	// Plan is a lowercase plan keyword from the owner plan enumeration.
	// Strategies only emit values inside the closed set.
	Plan string

	// Email is a candidate address for directory lookup when no direct
	// identifier is recoverable.
	Email string
}

// Merge combines results in precedence order: for each field the first
// non-empty value wins. This implements the structured -> description ->
// heuristic fallback chain with per-field independence.
func Merge(results ...Result) Result {
	var out Result
	for _, r := range results {
		if out.OwnerUID == "" {
			out.OwnerUID = r.OwnerUID
		}
		if out.Plan == "" {
			out.Plan = r.Plan
		}
		if out.Email == "" {
			out.Email = r.Email
		}
	}
	return out
}
