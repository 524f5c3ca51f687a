// Package ucan is the public facade over the UCAN capability-token core:
// construction (Builder), single-token and chain validation, capability
// reduction, and the verify(token, options) entry point (spec §7).
package ucan

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/yeying-community/ucan/internal/builder"
	"github.com/yeying-community/ucan/internal/capability"
	"github.com/yeying-community/ucan/internal/chain"
	"github.com/yeying-community/ucan/internal/codec"
	"github.com/yeying-community/ucan/internal/did"
	"github.com/yeying-community/ucan/internal/keymaterial"
	"github.com/yeying-community/ucan/internal/reducer"
	"github.com/yeying-community/ucan/internal/store"
	"github.com/yeying-community/ucan/internal/token"
	"github.com/yeying-community/ucan/internal/validator"
)

// Stable public type aliases. These re-export the core's internal types so
// callers never need to import the internal/ tree directly.
type (
	Token           = token.Token
	CapabilityClaim = token.CapabilityClaim
	Fact            = token.Fact

	Builder  = builder.Builder
	Signable = builder.Signable

	KeyMaterial       = keymaterial.KeyMaterial
	DidVerifier       = keymaterial.DidVerifier
	DidParser         = keymaterial.DidParser
	Ed25519Material   = keymaterial.Ed25519Material
	Secp256k1Material = keymaterial.Secp256k1Material

	Semantics = capability.Semantics
	View      = capability.View
	Resource  = capability.Resource
	Ability   = capability.Ability
	Caveat    = capability.Caveat
	General   = capability.General

	ProofChain   = chain.ProofChain
	ChainOptions = chain.Options

	CapabilityInfo = reducer.CapabilityInfo

	Store       = store.Store
	MemoryStore = store.Memory

	Clock = validator.Clock
)

// Clock source and error type re-exports.
var WallClock = validator.WallClock

type (
	ParseError              = token.ParseError
	CryptoError             = validator.CryptoError
	TemporalError           = validator.TemporalError
	LinkError               = validator.LinkError
	DelegationError         = chain.DelegationError
	ResourceError           = chain.ResourceError
	DepthError              = chain.DepthError
	ConfigError             = builder.ConfigError
	UnsupportedVersionError = validator.ParseErrorUnsupportedVersion
)

// NewBuilder starts a fluent Builder signing as issuer.
func NewBuilder(issuer KeyMaterial) *Builder { return builder.New(issuer) }

// NewMemoryStore constructs an empty in-memory, CID-keyed token Store.
func NewMemoryStore() *MemoryStore { return store.NewMemory() }

// GenerateEd25519 generates a fresh Ed25519 KeyMaterial with its did:key.
func GenerateEd25519() (*Ed25519Material, error) { return keymaterial.GenerateEd25519() }

// NewEd25519 wraps an existing raw Ed25519 private key as KeyMaterial,
// deriving its did:key.
func NewEd25519(priv ed25519.PrivateKey) (*Ed25519Material, error) { return keymaterial.NewEd25519(priv) }

// NewSecp256k1 wraps an existing ECDSA secp256k1 private key as KeyMaterial,
// deriving its did:pkh:eth: identifier.
func NewSecp256k1(priv *ecdsa.PrivateKey) *Secp256k1Material { return keymaterial.NewSecp256k1(priv) }

// GenerateSecp256k1 generates a fresh secp256k1 KeyMaterial with its did:pkh:eth: identifier.
func GenerateSecp256k1() (*Secp256k1Material, error) { return keymaterial.GenerateSecp256k1() }

// DefaultParser resolves did:key and did:pkh:eth: identifiers; it is the
// only DidParser this core ships (spec §1).
func DefaultParser() DidParser { return did.Parser{} }

// Decode parses a "header.payload.signature" wire string into a Token
// without verifying it; see Verify for the full chain-verifying entry point.
func Decode(jwt string) (*Token, error) { return codec.Decode(jwt) }

// VerifyOptions configures Verify.
type VerifyOptions struct {
	Parser           DidParser
	Store            Store
	Now              Clock
	AcceptedVersions []string
	Semantics        Semantics
	MaxDepth         int
	Logger           *zap.Logger

	// RequiredResource/RequiredAbility/RequiredCaveat, if RequiredAbility is
	// non-empty, name a capability that the reduced chain must enable; its
	// absence is itself an error (spec §7, "no partial success").
	// RequiredResource supports `{field}` substitution against the verified
	// token's own facts (spec §9, "facts-as-template-context").
	RequiredResource   string
	RequiredAbility    string
	RequiredCaveat     json.RawMessage
	RequiredOriginator string
}

func (o VerifyOptions) semantics() capability.Semantics {
	if o.Semantics != nil {
		return o.Semantics
	}
	return capability.General{}
}

func (o VerifyOptions) parser() keymaterial.DidParser {
	if o.Parser != nil {
		return o.Parser
	}
	return did.Parser{}
}

// VerifyResponse is the user-visible result of a successful Verify call.
type VerifyResponse struct {
	Capabilities []CapabilityInfo
	Facts        map[string]json.RawMessage
	ChainCIDs    []string
}

var templateField = regexp.MustCompile(`\{(\w+)\}`)

// Verify resolves jwt's full proof chain, validates every node and link,
// reduces capabilities, and — if a required capability was named — checks
// it is enabled (and, if RequiredOriginator was named, attributed to that
// DID). It returns a single error describing the first failure on any
// failure path (spec §7).
func Verify(jwt string, opts VerifyOptions) (*VerifyResponse, error) {
	sem := opts.semantics()
	pc, err := chain.FromUcan(jwt, chain.Options{
		Parser: opts.parser(),
		Store:  opts.Store,
		ValidatorOptions: validator.Options{
			Now:              opts.Now,
			AcceptedVersions: opts.AcceptedVersions,
			Logger:           opts.Logger,
		},
		MaxDepth:  opts.MaxDepth,
		Semantics: sem,
	})
	if err != nil {
		return nil, err
	}

	infos, err := reducer.ReduceCapabilities(pc, sem)
	if err != nil {
		return nil, err
	}

	if opts.RequiredAbility != "" {
		resourceURI := templateResource(opts.RequiredResource, pc.Token)
		required, ok := capability.Parse(sem, resourceURI, opts.RequiredAbility, opts.RequiredCaveat)
		if !ok {
			return nil, fmt.Errorf("ucan: required capability %q#%q failed to parse", resourceURI, opts.RequiredAbility)
		}

		var matched *CapabilityInfo
		for i := range infos {
			if infos[i].View.Enables(required) {
				matched = &infos[i]
				break
			}
		}
		if matched == nil {
			return nil, fmt.Errorf("ucan: required capability %q#%q is not enabled by the verified chain", resourceURI, opts.RequiredAbility)
		}
		if opts.RequiredOriginator != "" {
			if _, ok := matched.Originators[opts.RequiredOriginator]; !ok {
				return nil, fmt.Errorf("ucan: required originator %q not among %v", opts.RequiredOriginator, matched.OriginatorsSlice())
			}
		}
	}

	return &VerifyResponse{
		Capabilities: infos,
		Facts:        mergedFacts(pc),
		ChainCIDs:    pc.CIDs(),
	}, nil
}

// templateResource substitutes `{field}` placeholders against tok's own
// facts (spec §9's verification-boundary-only convenience; it is not part
// of the core capability algebra).
func templateResource(uri string, tok *token.Token) string {
	if uri == "" {
		return uri
	}
	return templateField.ReplaceAllStringFunc(uri, func(match string) string {
		key := match[1 : len(match)-1]
		raw, ok := tok.Fact(key)
		if !ok {
			return match
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return string(raw)
	})
}

// mergedFacts flattens every reachable token's facts into one map, excluding
// "prf" (spec §7's VerifyResponse.facts). Ancestors are applied first, so a
// closer-to-root fact wins on key collision.
func mergedFacts(pc *chain.ProofChain) map[string]json.RawMessage {
	out := map[string]json.RawMessage{}
	var walk func(*chain.ProofChain)
	walk = func(n *chain.ProofChain) {
		for _, child := range n.Proofs {
			walk(child)
		}
		for _, f := range n.Token.Facts {
			if f.Key == token.InlineProofsKey {
				continue
			}
			out[f.Key] = f.Value
		}
	}
	walk(pc)
	return out
}
