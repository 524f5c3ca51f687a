// Package builder implements the fluent UCAN construction API: capability
// claims, lifetime resolution, proof recording (with optional inline
// embedding), and delegation-capability synthesis (spec §4.3).
package builder

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yeying-community/ucan/internal/codec"
	"github.com/yeying-community/ucan/internal/keymaterial"
	"github.com/yeying-community/ucan/internal/token"
)

// DefaultVersion is the ucv this builder stamps on every token it produces.
const DefaultVersion = "0.10.0"

type inlineProof struct {
	cid string
	jwt string
}

// Builder accumulates the fields of a token-to-be. Every fluent method
// mutates and returns the same *Builder, matching the Rust reference
// implementation's for_audience/with_expiration/... chain.
type Builder struct {
	issuer          keymaterial.KeyMaterial
	audience        string
	capabilities    []token.CapabilityClaim
	expiration      *int64
	lifetimeSeconds *int64
	notBefore       *int64
	facts           []token.Fact
	proofs          []string
	inlineProofs    []inlineProof
	addNonce        bool
	addProofFacts   bool
	hasher          codec.Hasher
	now             func() int64
}

// New starts a Builder signing as issuer.
func New(issuer keymaterial.KeyMaterial) *Builder {
	return &Builder{issuer: issuer, now: func() int64 { return time.Now().Unix() }}
}

// ForAudience sets the recipient DID.
func (b *Builder) ForAudience(did string) *Builder {
	b.audience = did
	return b
}

// WithExpiration sets an explicit expiration; it wins over WithLifetime if both are set.
func (b *Builder) WithExpiration(exp int64) *Builder {
	b.expiration = &exp
	return b
}

// WithLifetime sets expiration to now()+seconds at Build time, unless an
// explicit WithExpiration has also been set.
func (b *Builder) WithLifetime(seconds int64) *Builder {
	b.lifetimeSeconds = &seconds
	return b
}

// WithNotBefore sets the not-before bound.
func (b *Builder) WithNotBefore(nbf int64) *Builder {
	b.notBefore = &nbf
	return b
}

// WithNonce requests a fresh 32-byte random nonce at Build time.
func (b *Builder) WithNonce() *Builder {
	b.addNonce = true
	return b
}

// WithFact appends a fact, preserving insertion order on encode.
func (b *Builder) WithFact(key string, value json.RawMessage) *Builder {
	b.facts = append(b.facts, token.Fact{Key: key, Value: value})
	return b
}

// ClaimingCapability appends a (resource, ability, caveat) claim.
func (b *Builder) ClaimingCapability(resource, ability string, caveat json.RawMessage) *Builder {
	b.capabilities = append(b.capabilities, token.CapabilityClaim{Resource: resource, Ability: ability, Caveat: caveat})
	return b
}

// WithHasher overrides the multihash code used for proof CID derivation
// (default Blake3-256).
func (b *Builder) WithHasher(h codec.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithClock overrides the clock used to resolve WithLifetime and nonce
// generation is unaffected; tests supply a fixed clock.
func (b *Builder) WithClock(now func() int64) *Builder {
	b.now = now
	return b
}

// WithInlineProofFacts turns on embedding each witnessed proof's encoded
// JWT into facts["prf"][cid] for receivers without store access.
func (b *Builder) WithInlineProofFacts(on bool) *Builder {
	b.addProofFacts = on
	return b
}

// WitnessedBy records proofJWT as a proof: computes its CID, appends it to
// proofs, and — if WithInlineProofFacts(true) — queues it for inline
// embedding (spec §4.3 "Proof recording").
func (b *Builder) WitnessedBy(proofJWT string) (*Builder, error) {
	cid, err := codec.DeriveCID(proofJWT, b.hasher)
	if err != nil {
		return b, err
	}
	b.proofs = append(b.proofs, cid)
	if b.addProofFacts {
		b.inlineProofs = append(b.inlineProofs, inlineProof{cid: cid, jwt: proofJWT})
	}
	return b, nil
}

// DelegatingFrom records proofJWT (as WitnessedBy does) and additionally
// claims a blanket redelegation capability over it: (ucan:<cid>, ucan/*, [{}]).
func (b *Builder) DelegatingFrom(proofJWT string) (*Builder, error) {
	if _, err := b.WitnessedBy(proofJWT); err != nil {
		return b, err
	}
	cid := b.proofs[len(b.proofs)-1]
	b.capabilities = append(b.capabilities, token.CapabilityClaim{
		Resource: fmt.Sprintf("ucan:%s", cid),
		Ability:  "ucan/*",
		Caveat:   json.RawMessage(`[{}]`),
	})
	return b, nil
}

// Signable is the payload-constructed, not-yet-signed intermediate, so that
// alternative signing flows (hardware, remote) can interpose between
// payload construction and signature attachment (spec §4.3).
type Signable struct {
	Token       *token.Token
	SignedBytes []byte
}

// Build validates required fields and constructs the Signable intermediate.
func (b *Builder) Build() (*Signable, error) {
	if b.issuer == nil {
		return nil, &ConfigError{Reason: "missing issuer"}
	}
	if b.audience == "" {
		return nil, &ConfigError{Reason: "missing audience"}
	}

	exp := b.expiration
	if exp == nil && b.lifetimeSeconds != nil {
		e := b.now() + *b.lifetimeSeconds
		exp = &e
	}

	var nonce string
	if b.addNonce {
		var err error
		nonce, err = generateNonce()
		if err != nil {
			return nil, err
		}
	}

	tok := &token.Token{
		Version:      DefaultVersion,
		Algorithm:    b.issuer.Algorithm(),
		Issuer:       b.issuer.DID(),
		Audience:     b.audience,
		Expiration:   exp,
		NotBefore:    b.notBefore,
		Nonce:        nonce,
		Facts:        append([]token.Fact{}, b.facts...),
		Capabilities: append([]token.CapabilityClaim{}, b.capabilities...),
		Proofs:       append([]string{}, b.proofs...),
	}
	for _, ip := range b.inlineProofs {
		if err := tok.SetInlineProof(ip.cid, ip.jwt); err != nil {
			return nil, err
		}
	}

	signable, err := codec.EncodeSignable(tok)
	if err != nil {
		return nil, err
	}
	tok.SignedBytes = signable
	return &Signable{Token: tok, SignedBytes: signable}, nil
}

// Sign builds and signs in one step, returning both the assembled Token and
// its full wire-encoded string.
func (b *Builder) Sign() (*token.Token, string, error) {
	signable, err := b.Build()
	if err != nil {
		return nil, "", err
	}
	sig, err := b.issuer.Sign(signable.SignedBytes)
	if err != nil {
		return nil, "", err
	}
	signable.Token.Signature = sig
	jwt, err := codec.EncodeSigned(signable.Token)
	if err != nil {
		return nil, "", err
	}
	return signable.Token, jwt, nil
}

func generateNonce() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("ucan: nonce generation: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
