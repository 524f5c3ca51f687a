// Package capability implements the resource/ability/caveat algebra: containment,
// ordering, and subsumption over UCAN capability triples.
package capability

import "strings"

// Scope is the parsed form of a URI-scoped resource's path, opaque to callers
// outside this package except for containment comparisons and formatting.
type Scope interface {
	// Scheme returns the URI scheme this scope was parsed under.
	Scheme() string
	// Contains reports whether this scope covers other under the hierarchical
	// wildcard rules of the same scheme.
	Contains(other Scope) bool
	String() string
}

// pathScope is the General Semantics scope: scheme plus "/"-separated segments.
type pathScope struct {
	scheme   string
	segments []string
}

// NewPathScope builds a Scope from a scheme and a "/"-separated path.
func NewPathScope(scheme, path string) Scope {
	segs := []string{}
	if path != "" {
		segs = strings.Split(path, "/")
	}
	return pathScope{scheme: scheme, segments: segs}
}

func (s pathScope) Scheme() string { return s.scheme }

func (s pathScope) String() string {
	if len(s.segments) == 0 {
		return s.scheme + ":"
	}
	return s.scheme + ":" + strings.Join(s.segments, "/")
}

// Contains implements the table in spec §4.1: split on "/", walk segment by
// segment, "*" matches any single segment, C may not be deeper than R.
func (c pathScope) Contains(other Scope) bool {
	r, ok := other.(pathScope)
	if !ok || c.scheme != r.scheme {
		return false
	}
	if len(c.segments) > len(r.segments) {
		return false
	}
	for i, seg := range c.segments {
		if seg == "*" || r.segments[i] == "*" {
			continue
		}
		if seg != r.segments[i] {
			return false
		}
	}
	return true
}
