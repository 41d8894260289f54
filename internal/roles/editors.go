package roles

import (
	"errors"
	"regexp"
	"strings"
)

// ErrRoster is returned when the editor roster cannot be fetched.
var ErrRoster = errors.New("editor roster unavailable")

// rosterEntry matches an indented list item in the roster YAML, e.g. "  - octocat".
var rosterEntry = regexp.MustCompile(`(?m)^  - (.+)`)

// ResolveEditors extracts editor logins from the roster document. Lines that
// are not indented list items are ignored.
func ResolveEditors(roster string) Set {
	var logins []string
	for _, m := range rosterEntry.FindAllStringSubmatch(roster, -1) {
		// (.+) stops at \n but keeps a trailing \r from CRLF files
		login := strings.TrimSpace(m[1])
		logins = append(logins, login)
	}
	return NewSet(logins...)
}
