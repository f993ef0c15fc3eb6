// Package extract recovers an owner identifier, a plan hint, and an email
// address from loosely-structured payment events. Three independent
// strategies are provided: a structured lookup over known metadata keys, a
// free-text description parser, and a heuristic scan over every metadata
// entry. Each strategy is a pure function over its input and each field of
// the result is independently optional; absence is never an error.
package extract

import (
	"sort"

	"github.com/cleardish/entitlements/pkg/entitle"
)

// Pair is one metadata entry.
type Pair struct {
	Key   string
	Value string
}

// Metadata is an ordered sequence of metadata entries. Provider metadata
// arrives as an unordered map; ordering it makes the first-seen tie-breaks
// of the heuristic scan deterministic and testable instead of depending on
// incidental map iteration order.
type Metadata []Pair

// MetadataFromMap builds an ordered Metadata from a decoded provider
// metadata map. Non-scalar values are dropped. Keys are sorted so the
// resulting sequence, and therefore every first-seen tie-break downstream,
// is stable for a given map.
func MetadataFromMap(m map[string]interface{}) Metadata {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	md := make(Metadata, 0, len(keys))
	for _, k := range keys {
		if s, ok := entitle.CoerceString(m[k]); ok {
			md = append(md, Pair{Key: k, Value: s})
		}
	}
	return md
}

// Get returns the value of the first entry with the given key.
func (md Metadata) Get(key string) (string, bool) {
	for _, p := range md {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}
