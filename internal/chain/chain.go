// Package chain assembles a verified proof chain from a root UCAN token by
// recursively resolving its proofs, validating parent/child links, and
// resolving redelegation selectors against each node's immediate proofs
// (spec §4.6).
package chain

import (
	"fmt"

	"github.com/yeying-community/ucan/internal/capability"
	"github.com/yeying-community/ucan/internal/codec"
	"github.com/yeying-community/ucan/internal/keymaterial"
	"github.com/yeying-community/ucan/internal/store"
	"github.com/yeying-community/ucan/internal/token"
	"github.com/yeying-community/ucan/internal/validator"
)

// defaultMaxDepth bounds the recursive proof walk (spec §9, "finite depth limit").
const defaultMaxDepth = 32

// ProofChain is one validated node of a resolved proof tree (or DAG): the
// decoded, validated token, its own resolved proofs in token.Proofs order,
// and the subset of those immediate proofs that a `ucan:`-scheme
// redelegation capability on this token designates as redelegated (spec
// §4.7's set D, keyed by the child ProofChain's CID).
type ProofChain struct {
	Token       *token.Token
	CID         string
	Proofs      []*ProofChain
	Redelegated map[string]bool
}

// Options configures FromUcan.
type Options struct {
	Parser           keymaterial.DidParser
	Store            store.Store
	ValidatorOptions validator.Options
	MaxDepth         int
	Semantics        capability.Semantics
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return defaultMaxDepth
}

func (o Options) semantics() capability.Semantics {
	if o.Semantics != nil {
		return o.Semantics
	}
	return capability.General{}
}

// FromUcan decodes, validates, and recursively resolves the proof chain
// rooted at jwt. A memoization cache keyed by CID lets a DAG (two nodes
// sharing one proof) be walked without repeating signature verification on
// the shared node (spec §9, "Cyclic proof graphs").
func FromUcan(jwt string, opts Options) (*ProofChain, error) {
	return build(jwt, "", opts, 0, map[string]*ProofChain{})
}

func build(jwt, cid string, opts Options, depth int, cache map[string]*ProofChain) (*ProofChain, error) {
	if depth > opts.maxDepth() {
		return nil, &DepthError{Limit: opts.maxDepth()}
	}
	if cid != "" {
		if cached, ok := cache[cid]; ok {
			return cached, nil
		}
	}

	tok, err := codec.Decode(jwt)
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(tok, opts.Parser, opts.ValidatorOptions); err != nil {
		return nil, err
	}

	pc := &ProofChain{Token: tok, CID: cid, Redelegated: map[string]bool{}}
	if cid != "" {
		cache[cid] = pc
	}

	children := make([]*ProofChain, 0, len(tok.Proofs))
	childByCID := make(map[string]*ProofChain, len(tok.Proofs))
	for _, proofCID := range tok.Proofs {
		childJWT, inline := tok.InlineProof(proofCID)
		if !inline {
			if opts.Store == nil {
				return nil, &ResourceError{CID: proofCID}
			}
			childJWT, err = opts.Store.RequireToken(proofCID)
			if err != nil {
				return nil, &ResourceError{CID: proofCID, Err: err}
			}
		}

		child, err := build(childJWT, proofCID, opts, depth+1, cache)
		if err != nil {
			return nil, err
		}
		if err := validator.ValidateLink(child.Token, tok); err != nil {
			return nil, err
		}
		children = append(children, child)
		childByCID[proofCID] = child
	}
	pc.Proofs = children

	if err := resolveRedelegations(pc, tok, children, childByCID, opts.semantics()); err != nil {
		return nil, err
	}

	return pc, nil
}

// resolveRedelegations interprets every redelegation capability on tok
// against its own immediate proofs, marking the designated children in
// pc.Redelegated (spec §4.6 step 4).
func resolveRedelegations(pc *ProofChain, tok *token.Token, children []*ProofChain, childByCID map[string]*ProofChain, sem capability.Semantics) error {
	for _, c := range tok.Capabilities {
		view, ok := capability.Parse(sem, c.Resource, c.Ability, c.Caveat)
		if !ok || !view.IsProofDelegation() {
			continue
		}
		sel, ok := view.Resource.(capability.ProofSelector)
		if !ok {
			continue
		}

		switch sel.Kind {
		case capability.SelectAll, capability.SelectThese:
			for _, ch := range children {
				pc.Redelegated[ch.CID] = true
			}

		case capability.SelectCID:
			ch, ok := childByCID[sel.CID]
			if !ok {
				return &DelegationError{Reason: fmt.Sprintf("redelegation references proof %q, not among immediate proofs", sel.CID)}
			}
			pc.Redelegated[ch.CID] = true

		case capability.SelectDID:
			found := false
			for _, ch := range children {
				if ch.Token.Issuer == sel.DID {
					pc.Redelegated[ch.CID] = true
					found = true
					break
				}
			}
			if !found {
				return &DelegationError{Reason: fmt.Sprintf("redelegation references did %q, not an immediate proof issuer", sel.DID)}
			}

		case capability.SelectDIDScheme:
			return &DelegationError{Reason: "ucan://did/scheme redelegation is not supported"}
		}
	}
	return nil
}

// CIDs returns every CID in the chain reachable from pc, including pc's own
// (empty for a root that was never itself a proof), in a depth-first,
// proofs-in-order, no-duplicates walk — used to build VerifyResponse's
// chain-CID list.
func (pc *ProofChain) CIDs() []string {
	var out []string
	seen := map[string]bool{}
	var walk func(*ProofChain)
	walk = func(n *ProofChain) {
		if n.CID != "" {
			if seen[n.CID] {
				return
			}
			seen[n.CID] = true
			out = append(out, n.CID)
		}
		for _, child := range n.Proofs {
			walk(child)
		}
	}
	walk(pc)
	return out
}
