package match

import "github.com/samber/lo"

// FindMatch returns the first element of pool with the same provenance URL as
// candidate, or nil when there is none. If the element found was never
// persisted the candidate itself is returned.
func FindMatch(candidate *Match, pool []*Match) *Match {
	if candidate == nil || len(pool) == 0 {
		return nil
	}

	found, ok := lo.Find(pool, func(m *Match) bool {
		return m != nil && m.Shared.URL == candidate.Shared.URL
	})
	if !ok {
		return nil
	}

	if !found.Persisted() {
		return candidate
	}
	return found
}
