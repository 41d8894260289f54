// Package roles resolves the editor roster and per-request author identities
// into login sets used to classify pull request activity.
package roles

import (
	"sort"
	"strings"
)

// Set is an immutable set of lower-cased GitHub logins.
type Set struct {
	logins map[string]struct{}
}

// NewSet builds a Set from the given logins, normalizing case.
func NewSet(logins ...string) Set {
	m := make(map[string]struct{}, len(logins))
	for _, l := range logins {
		if l == "" {
			continue
		}
		m[strings.ToLower(l)] = struct{}{}
	}
	return Set{logins: m}
}

// Contains reports whether login (compared case-insensitively) is a member.
func (s Set) Contains(login string) bool {
	if login == "" {
		return false
	}
	_, ok := s.logins[strings.ToLower(login)]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.logins)
}

// Logins returns the members in sorted order.
func (s Set) Logins() []string {
	out := make([]string, 0, len(s.logins))
	for l := range s.logins {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
