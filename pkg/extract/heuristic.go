package extract

import "strings"

// FromHeuristics scans every metadata entry for recoverable fields when
// neither the known keys nor the description produced anything.
//
// Identifier rules, in order:
//  1. A UUID-shaped value whose key name contains "uid" or "owner" is
//     adopted immediately; the first such entry in sequence order wins.
//     Multiple qualifying keys is a degenerate case with no defined winner
//     beyond first-seen.
//  2. Otherwise, if exactly one UUID-shaped value exists anywhere in the
//     metadata it is adopted by elimination. Two or more ambiguous
//     candidates yield no identifier at all: misattributing an entitlement
//     is worse than failing to attribute one.
//
// The first value naming an owner plan and the first email-shaped value are
// collected independently of the identifier rules.
//
// This is best-effort product policy rather than a verified contract: a
// metadata map can defeat it in both directions (an unrelated lone UUID, or
// an owner id stored under an unrecognizable key).
func FromHeuristics(md Metadata) Result {
	var r Result
	var candidates []string

	for _, p := range md {
		v := strings.TrimSpace(p.Value)

		if IsUUID(v) {
			key := strings.ToLower(p.Key)
			if r.OwnerUID == "" && (strings.Contains(key, "uid") || strings.Contains(key, "owner")) {
				r.OwnerUID = v
			} else {
				candidates = append(candidates, v)
			}
		}

		if r.Plan == "" {
			r.Plan = normalizePlan(v)
		}
		if r.Email == "" && IsEmail(v) {
			r.Email = v
		}
	}

	if r.OwnerUID == "" && len(candidates) == 1 {
		r.OwnerUID = candidates[0]
	}

	return r
}
