package keymaterial

import (
	"crypto/ed25519"
	"fmt"

	"github.com/yeying-community/ucan/internal/did"
)

// Ed25519Material is a KeyMaterial backed by an in-memory Ed25519 private key.
type Ed25519Material struct {
	priv ed25519.PrivateKey
	did  string
}

var _ KeyMaterial = (*Ed25519Material)(nil)

// NewEd25519 derives the did:key and wraps priv as a KeyMaterial.
func NewEd25519(priv ed25519.PrivateKey) (*Ed25519Material, error) {
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("keymaterial: invalid ed25519 private key")
	}
	didStr, err := did.EncodeKeyDID(did.KeyTypeEd25519, pub)
	if err != nil {
		return nil, err
	}
	return &Ed25519Material{priv: priv, did: didStr}, nil
}

// GenerateEd25519 generates a fresh Ed25519 keypair and wraps it.
func GenerateEd25519() (*Ed25519Material, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return NewEd25519(priv)
}

func (m *Ed25519Material) DID() string       { return m.did }
func (m *Ed25519Material) Algorithm() string { return "EdDSA" }

func (m *Ed25519Material) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(m.priv, data), nil
}
