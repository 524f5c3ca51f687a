// Package token implements the in-memory UCAN token model and its JWT-like
// codec: the header/payload JSON shape, capability serialization forms, and
// facts ordering (spec §4.2).
package token

import "encoding/json"

// CapabilityClaim is a raw (resource, ability, caveat) triple as it appears
// on the wire, before being parsed under a Semantics.
type CapabilityClaim struct {
	Resource string
	Ability  string
	Caveat   json.RawMessage
}

// Fact is an ordered string-keyed entry; Token.Facts preserves insertion
// order on encode by walking this slice, falling back to lexicographic
// order when facts are decoded from a JSON object (object key order is not
// preserved by encoding/json, and the spec permits this).
type Fact struct {
	Key   string
	Value json.RawMessage
}

// Token is a signed authorization statement (spec §3).
type Token struct {
	Version      string
	Algorithm    string
	Issuer       string
	Audience     string
	Expiration   *int64
	NotBefore    *int64
	Nonce        string
	Facts        []Fact
	Capabilities []CapabilityClaim
	Proofs       []string

	// SignedBytes is the exact b64url(header) + "." + b64url(payload) byte
	// sequence that was (or would be) fed to the signer.
	SignedBytes []byte
	Signature   []byte

	// encoded caches the full "header.payload.signature" string so repeated
	// calls to Encoded() are stable without re-deriving from fields.
	encoded string
}

// Encoded returns the cached JWT-shaped string for this token. It is set by
// the builder on Sign and by the codec on Decode; it is empty for a Token
// assembled by hand without going through either path.
func (t *Token) Encoded() string { return t.encoded }

// SetEncoded stores the exact wire string this token was produced from or
// signed into. Callers outside this package should not need this; it is
// exported for the builder and codec packages.
func (t *Token) SetEncoded(s string) { t.encoded = s }

// IsExpired reports whether now is past the token's expiration, if any.
func (t *Token) IsExpired(now int64) bool {
	return t.Expiration != nil && now > *t.Expiration
}

// IsTooEarly reports whether now precedes the token's not-before, if any.
func (t *Token) IsTooEarly(now int64) bool {
	return t.NotBefore != nil && now < *t.NotBefore
}

// Fact looks up a fact by key.
func (t *Token) Fact(key string) (json.RawMessage, bool) {
	for _, f := range t.Facts {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// SetFact inserts or replaces a fact, preserving first-insertion position.
func (t *Token) SetFact(key string, value json.RawMessage) {
	for i, f := range t.Facts {
		if f.Key == key {
			t.Facts[i].Value = value
			return
		}
	}
	t.Facts = append(t.Facts, Fact{Key: key, Value: value})
}
