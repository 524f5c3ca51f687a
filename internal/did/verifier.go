package did

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/yeying-community/ucan/internal/keymaterial"
)

type ed25519Verifier struct {
	pub ed25519.PublicKey
}

func (v ed25519Verifier) Algorithm() string { return "EdDSA" }

func (v ed25519Verifier) Verify(data, signature []byte) bool {
	return ed25519.Verify(v.pub, data, signature)
}

// ethVerifier verifies secp256k1 signatures by recovering the signer's
// address and comparing it against the address embedded in a did:pkh:eth:
// identifier, matching the teacher's recoverAddress/verifyRootProof flow.
type ethVerifier struct {
	address string // lowercase 0x-prefixed
}

func (v ethVerifier) Algorithm() string { return "ES256K" }

func (v ethVerifier) Verify(data, signature []byte) bool {
	if len(signature) != 65 {
		return false
	}
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	hash := crypto.Keccak256(data)
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return false
	}
	return strings.ToLower(crypto.PubkeyToAddress(*pub).Hex()) == v.address
}

// Parser resolves Ed25519 did:key and did:pkh:eth: identifiers to a
// keymaterial.DidVerifier. It is the only DidParser this core ships; a
// secp256k1 or P-256 did:key is decoded but Parse returns an error for it,
// as there is no verifier for those key types here.
type Parser struct{}

var _ keymaterial.DidParser = Parser{}

func (Parser) Parse(didStr string) (keymaterial.DidVerifier, error) {
	if IsEthDID(didStr) {
		addr, ok := DecodeEthDID(didStr)
		if !ok {
			return nil, fmt.Errorf("did: invalid did:pkh:eth: %q", didStr)
		}
		return ethVerifier{address: addr}, nil
	}
	kt, pub, err := DecodeKeyDID(didStr)
	if err != nil {
		return nil, err
	}
	switch kt {
	case KeyTypeEd25519:
		return ed25519Verifier{pub: ed25519.PublicKey(pub)}, nil
	case KeyTypeSecp256k1, KeyTypeP256:
		return nil, fmt.Errorf("did: key type for %q has no concrete verifier in this core; supply a DidParser", didStr)
	default:
		return nil, fmt.Errorf("did: unsupported did %q", didStr)
	}
}
