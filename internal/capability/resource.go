package capability

import (
	"fmt"
	"strings"
)

// Resource is either a URI-scoped resource or a UCAN proof selector.
type Resource interface {
	// Contains reports whether this resource (held) contains other (required).
	Contains(other Resource) bool
	String() string
}

// URIResource is a "scheme:path" resource with hierarchical wildcard semantics.
type URIResource struct {
	scope Scope
}

// NewURIResource wraps a parsed Scope as a Resource.
func NewURIResource(s Scope) URIResource {
	return URIResource{scope: s}
}

func (u URIResource) Scope() Scope { return u.scope }

func (u URIResource) String() string { return u.scope.String() }

// Contains implements §4.1: URI resources contain other URI resources of the
// same scheme under hierarchical path rules; they never contain a proof
// selector (the asymmetry is intentional, see ProofSelector.Contains).
func (u URIResource) Contains(other Resource) bool {
	o, ok := other.(URIResource)
	if !ok {
		return false
	}
	return u.scope.Contains(o.scope)
}

// ProofSelectorKind enumerates the ucan:-scheme redelegation selectors.
type ProofSelectorKind int

const (
	// SelectAll is ucan:* — every proof, recursively.
	SelectAll ProofSelectorKind = iota
	// SelectThese is ucan:./* — every immediate proof of this token.
	SelectThese
	// SelectCID is ucan:<cid> — one specific proof by CID.
	SelectCID
	// SelectDID is ucan://<did>/* — the first immediate proof issued by <did>.
	SelectDID
	// SelectDIDScheme is ucan://<did>/<scheme> — recognized but rejected at reduction.
	SelectDIDScheme
)

// ProofSelector is a `ucan:...` resource used for redelegation capabilities.
type ProofSelector struct {
	Kind   ProofSelectorKind
	CID    string
	DID    string
	Scheme string
}

// ParseProofSelector parses the five ucan:-scheme resource forms. It is
// always applied internally regardless of the caller's Semantics (§4.1).
func ParseProofSelector(uri string) (ProofSelector, bool) {
	const prefix = "ucan:"
	if !strings.HasPrefix(uri, prefix) {
		return ProofSelector{}, false
	}
	rest := strings.TrimPrefix(uri, prefix)
	switch {
	case rest == "*":
		return ProofSelector{Kind: SelectAll}, true
	case rest == "./*":
		return ProofSelector{Kind: SelectThese}, true
	case strings.HasPrefix(rest, "//"):
		authority := strings.TrimPrefix(rest, "//")
		did, tail, found := strings.Cut(authority, "/")
		if did == "" {
			return ProofSelector{}, false
		}
		if !found || tail == "*" {
			return ProofSelector{Kind: SelectDID, DID: did}, true
		}
		return ProofSelector{Kind: SelectDIDScheme, DID: did, Scheme: tail}, true
	case rest != "":
		return ProofSelector{Kind: SelectCID, CID: rest}, true
	default:
		return ProofSelector{}, false
	}
}

func (p ProofSelector) String() string {
	switch p.Kind {
	case SelectAll:
		return "ucan:*"
	case SelectThese:
		return "ucan:./*"
	case SelectCID:
		return fmt.Sprintf("ucan:%s", p.CID)
	case SelectDID:
		return fmt.Sprintf("ucan://%s/*", p.DID)
	case SelectDIDScheme:
		return fmt.Sprintf("ucan://%s/%s", p.DID, p.Scheme)
	default:
		return "ucan:?"
	}
}

// Contains implements ProofSelection containment plus the deliberate
// asymmetry with URIResource: a proof selector contains any concrete
// resource below it, but a URIResource never contains a proof selector.
func (p ProofSelector) Contains(other Resource) bool {
	switch o := other.(type) {
	case ProofSelector:
		switch p.Kind {
		case SelectAll:
			return true
		case SelectThese:
			return o.Kind != SelectAll
		default:
			return p == o
		}
	case URIResource:
		return p.Kind == SelectAll || p.Kind == SelectThese
	default:
		return false
	}
}
