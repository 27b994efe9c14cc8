// Package preference parses the Prefer request header (RFC 7240) for the
// return preference of write operations.
package preference

import (
	"net/http"
	"strings"
)

// Preference holds the return preference of a write request.
type Preference struct {
	ReturnRepresentation bool
	ReturnMinimal        bool
}

// ParsePrefer parses the Prefer header of r. Unknown preferences and
// parameters are ignored. When both return forms are present the last wins.
func ParsePrefer(r *http.Request) *Preference {
	pref := &Preference{}

	for _, header := range r.Header.Values("Prefer") {
		for _, p := range strings.Split(header, ",") {
			token := strings.ToLower(strings.TrimSpace(p))
			if i := strings.IndexByte(token, ';'); i >= 0 {
				token = strings.TrimSpace(token[:i])
			}
			switch strings.ReplaceAll(token, " ", "") {
			case "return=representation":
				pref.ReturnRepresentation, pref.ReturnMinimal = true, false
			case "return=minimal":
				pref.ReturnRepresentation, pref.ReturnMinimal = false, true
			}
		}
	}

	return pref
}

// ShouldReturnContent reports whether a write response carries the entity.
// All writes return the entity unless return=minimal was requested.
func (p *Preference) ShouldReturnContent() bool {
	return !p.ReturnMinimal
}

// Applied returns the Preference-Applied header value, or "" when the
// request expressed no return preference.
func (p *Preference) Applied() string {
	if p.ReturnRepresentation {
		return "return=representation"
	}
	if p.ReturnMinimal {
		return "return=minimal"
	}
	return ""
}
