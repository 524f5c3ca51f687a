package capability

import "encoding/json"

// Semantics parses application-defined resource URIs and ability strings.
// A `ucan:`-scheme resource is always handled internally as a ProofSelector
// regardless of the Semantics implementation supplied.
type Semantics interface {
	ParseScope(uri string) (Scope, bool)
	ParseAction(raw string) (Ability, bool)
}

// View is a parsed capability triple ready for containment/ordering/
// subsumption comparisons.
type View struct {
	Resource Resource
	Ability  Ability
	Caveat   Caveat
}

// Parse parses a raw (resource URI, ability string, caveat JSON) triple
// under the given Semantics. It returns ok=false if either the resource or
// the ability fails to parse; the caller (the reducer, per §4.7 step 3)
// should skip the triple rather than fail the whole operation.
func Parse(sem Semantics, resourceURI, abilityStr string, caveatRaw json.RawMessage) (View, bool) {
	resource, ok := parseResource(sem, resourceURI)
	if !ok {
		return View{}, false
	}
	ability, ok := sem.ParseAction(abilityStr)
	if !ok {
		return View{}, false
	}
	caveat, err := NormalizeCaveat(caveatRaw)
	if err != nil {
		return View{}, false
	}
	return View{Resource: resource, Ability: ability, Caveat: caveat}, true
}

func parseResource(sem Semantics, uri string) (Resource, bool) {
	if sel, ok := ParseProofSelector(uri); ok {
		return sel, true
	}
	scope, ok := sem.ParseScope(uri)
	if !ok {
		return nil, false
	}
	return NewURIResource(scope), true
}

// Enables reports whether v (held) enables other (required): resource
// containment, ability dominance, and caveat subsumption must all hold.
func (v View) Enables(other View) bool {
	return v.Resource.Contains(other.Resource) &&
		v.Ability.GreaterOrEqual(other.Ability) &&
		v.Caveat.Subsumes(other.Caveat)
}

// IsProofDelegation reports whether v is a redelegation capability: its
// resource is a ucan:-scheme proof selector and its ability is "ucan/*".
func (v View) IsProofDelegation() bool {
	if !v.Ability.IsUcanRedelegation() {
		return false
	}
	_, ok := v.Resource.(ProofSelector)
	return ok
}
