// Package reducer implements the bottom-up capability-reduction algorithm
// over an assembled proof chain: ancestral attribution, redelegation window
// rewriting, and redundancy merge (spec §4.7).
package reducer

import (
	"sort"

	"github.com/yeying-community/ucan/internal/capability"
	"github.com/yeying-community/ucan/internal/chain"
)

// CapabilityInfo is the reducer's output entry: a parsed capability view,
// its effective (attenuated) lifetime window, and the set of issuer DIDs
// that ultimately authorize it.
type CapabilityInfo struct {
	Originators map[string]struct{}
	NotBefore   *int64
	Expiration  *int64
	View        capability.View
}

// OriginatorsSlice returns Originators as a sorted slice, for deterministic
// display/comparison.
func (c CapabilityInfo) OriginatorsSlice() []string {
	out := make([]string, 0, len(c.Originators))
	for o := range c.Originators {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// ReduceCapabilities walks pc bottom-up under sem (nil means General{}),
// producing the flat, deduplicated capability-info list pc authorizes
// downstream (spec §4.7). A nil semantics falls back to capability.General.
func ReduceCapabilities(pc *chain.ProofChain, sem capability.Semantics) ([]CapabilityInfo, error) {
	if sem == nil {
		sem = capability.General{}
	}
	return reduce(pc, sem)
}

func reduce(pc *chain.ProofChain, sem capability.Semantics) ([]CapabilityInfo, error) {
	// Step 1: ancestral set A, excluding redelegated proofs. Used only to
	// attribute originators for S below; it is never surfaced directly.
	var ancestral []CapabilityInfo
	for _, proof := range pc.Proofs {
		if pc.Redelegated[proof.CID] {
			continue
		}
		sub, err := reduce(proof, sem)
		if err != nil {
			return nil, err
		}
		ancestral = append(ancestral, sub...)
	}

	// Step 2: redelegated set D, window rewritten to this node's own window.
	var redelegated []CapabilityInfo
	for _, proof := range pc.Proofs {
		if !pc.Redelegated[proof.CID] {
			continue
		}
		sub, err := reduce(proof, sem)
		if err != nil {
			return nil, err
		}
		for _, info := range sub {
			redelegated = append(redelegated, CapabilityInfo{
				Originators: cloneSet(info.Originators),
				NotBefore:   pc.Token.NotBefore,
				Expiration:  pc.Token.Expiration,
				View:        info.View,
			})
		}
	}

	// Step 3: self set S. Proof-delegation capabilities are consumed by
	// redelegation resolution (step 2's input) and never appear here
	// themselves.
	var self []CapabilityInfo
	for _, c := range pc.Token.Capabilities {
		view, ok := capability.Parse(sem, c.Resource, c.Ability, c.Caveat)
		if !ok || view.IsProofDelegation() {
			continue
		}

		originators := map[string]struct{}{}
		if len(pc.Proofs) == 0 {
			originators[pc.Token.Issuer] = struct{}{}
		} else {
			for _, a := range ancestral {
				if a.View.Enables(view) {
					for o := range a.Originators {
						originators[o] = struct{}{}
					}
				}
			}
			if len(originators) == 0 {
				originators[pc.Token.Issuer] = struct{}{}
			}
		}

		self = append(self, CapabilityInfo{
			Originators: originators,
			NotBefore:   pc.Token.NotBefore,
			Expiration:  pc.Token.Expiration,
			View:        view,
		})
	}

	// Step 4: merge S ∪ D into a deduplicated list M.
	var merged []CapabilityInfo
	for _, e := range self {
		merged = mergeInto(merged, e)
	}
	for _, e := range redelegated {
		merged = mergeInto(merged, e)
	}
	return merged, nil
}

// mergeInto folds e into kept, per the resolved merge rule (spec §9 point
// 3): when two entries mutually enable each other, the survivor is chosen
// by (resource, ability) lexicographic order rather than arbitrarily
// picking whichever arrived first; the loser's originators are always
// folded into the survivor.
func mergeInto(kept []CapabilityInfo, e CapabilityInfo) []CapabilityInfo {
	for i, f := range kept {
		fEnablesE := f.View.Enables(e.View)
		eEnablesF := e.View.Enables(f.View)

		switch {
		case fEnablesE && !eEnablesF:
			kept[i] = absorb(f, e)
			return kept
		case eEnablesF && !fEnablesE:
			kept[i] = absorb(e, f)
			return kept
		case fEnablesE && eEnablesF:
			winner, loser := tieBreak(f, e)
			kept[i] = absorb(winner, loser)
			return kept
		}
	}
	return append(kept, e)
}

// absorb merges loser's originators into a copy of survivor, keeping
// survivor's own view and window.
func absorb(survivor, loser CapabilityInfo) CapabilityInfo {
	merged := cloneSet(survivor.Originators)
	for o := range loser.Originators {
		merged[o] = struct{}{}
	}
	survivor.Originators = merged
	return survivor
}

// tieBreak resolves mutual enablement deterministically: the entry whose
// (resource, ability) string pair sorts lexicographically first survives.
func tieBreak(a, b CapabilityInfo) (winner, loser CapabilityInfo) {
	aKey := a.View.Resource.String() + "#" + a.View.Ability.String()
	bKey := b.View.Resource.String() + "#" + b.View.Ability.String()
	if aKey <= bKey {
		return a, b
	}
	return b, a
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
