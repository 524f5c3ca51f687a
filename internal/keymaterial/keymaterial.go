// Package keymaterial defines the signer/verifier contract the core treats
// as an external collaborator (spec §1): concrete signature algorithms are
// not re-specified here, only the uniform interface the builder and
// validator consume.
package keymaterial

// KeyMaterial signs bytes on behalf of an issuer DID. Implementations must
// be safe for concurrent use by multiple chain builds (§5); if not, the
// caller is responsible for serializing access.
type KeyMaterial interface {
	// DID returns the issuer's did:... string.
	DID() string
	// Algorithm returns the JWT-style alg identifier, e.g. "EdDSA".
	Algorithm() string
	// Sign returns the raw signature bytes over data.
	Sign(data []byte) ([]byte, error)
}

// DidVerifier verifies a signature against the public key resolved from a DID.
type DidVerifier interface {
	// Algorithm returns the alg identifier this verifier expects.
	Algorithm() string
	// Verify reports whether signature is valid over data.
	Verify(data, signature []byte) bool
}

// DidParser turns a DID string into a DidVerifier. The core only consumes
// this contract; resolution beyond did:key is out of scope (spec §1).
type DidParser interface {
	Parse(did string) (DidVerifier, error)
}
