package keymaterial

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/yeying-community/ucan/internal/did"
)

// Secp256k1Material is a KeyMaterial backed by an Ethereum-style secp256k1
// key, issuing did:pkh:eth: tokens and signing over Keccak256(data) the way
// the teacher's web3 authenticator verifies wallet signatures.
type Secp256k1Material struct {
	priv *ecdsa.PrivateKey
	did  string
}

var _ KeyMaterial = (*Secp256k1Material)(nil)

// NewSecp256k1 wraps an existing private key.
func NewSecp256k1(priv *ecdsa.PrivateKey) *Secp256k1Material {
	addr := crypto.PubkeyToAddress(priv.PublicKey)
	return &Secp256k1Material{priv: priv, did: did.EncodeEthDID(addr)}
}

// GenerateSecp256k1 generates a fresh secp256k1 keypair.
func GenerateSecp256k1() (*Secp256k1Material, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return NewSecp256k1(priv), nil
}

func (m *Secp256k1Material) DID() string       { return m.did }
func (m *Secp256k1Material) Algorithm() string { return "ES256K" }

func (m *Secp256k1Material) Sign(data []byte) ([]byte, error) {
	hash := crypto.Keccak256(data)
	sig, err := crypto.Sign(hash, m.priv)
	if err != nil {
		return nil, err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}
