package did

import (
	"crypto/ed25519"
	"fmt"
	"strings"
)

// multicodec varint prefixes for the did:key key types this package
// understands; see https://github.com/multiformats/multicodec.
var (
	ed25519PubPrefix   = []byte{0xed, 0x01}
	secp256k1PubPrefix = []byte{0xe7, 0x01}
	p256PubPrefix      = []byte{0x80, 0x24}
)

const keyPrefix = "did:key:z"

// KeyType identifies the multicodec key family encoded in a did:key.
type KeyType int

const (
	KeyTypeUnknown KeyType = iota
	KeyTypeEd25519
	KeyTypeSecp256k1
	KeyTypeP256
)

// EncodeKeyDID builds a did:key string for the given multicodec key type
// and raw public key bytes.
func EncodeKeyDID(kt KeyType, pubkey []byte) (string, error) {
	prefix, err := prefixFor(kt)
	if err != nil {
		return "", err
	}
	buf := make([]byte, 0, len(prefix)+len(pubkey))
	buf = append(buf, prefix...)
	buf = append(buf, pubkey...)
	return keyPrefix + base58Encode(buf), nil
}

func prefixFor(kt KeyType) ([]byte, error) {
	switch kt {
	case KeyTypeEd25519:
		return ed25519PubPrefix, nil
	case KeyTypeSecp256k1:
		return secp256k1PubPrefix, nil
	case KeyTypeP256:
		return p256PubPrefix, nil
	default:
		return nil, fmt.Errorf("did: unsupported key type %d", kt)
	}
}

// DecodeKeyDID parses a did:key string into its key type and raw public key
// bytes. Only the key families named in spec §1 are recognized.
func DecodeKeyDID(didStr string) (KeyType, []byte, error) {
	if !strings.HasPrefix(didStr, keyPrefix) {
		return KeyTypeUnknown, nil, fmt.Errorf("did: not a did:key: %q", didStr)
	}
	decoded, err := base58Decode(strings.TrimPrefix(didStr, keyPrefix))
	if err != nil {
		return KeyTypeUnknown, nil, fmt.Errorf("did: invalid base58: %w", err)
	}
	switch {
	case hasPrefix(decoded, ed25519PubPrefix):
		key := decoded[len(ed25519PubPrefix):]
		if len(key) != ed25519.PublicKeySize {
			return KeyTypeUnknown, nil, fmt.Errorf("did: invalid ed25519 key size")
		}
		return KeyTypeEd25519, key, nil
	case hasPrefix(decoded, secp256k1PubPrefix):
		return KeyTypeSecp256k1, decoded[len(secp256k1PubPrefix):], nil
	case hasPrefix(decoded, p256PubPrefix):
		return KeyTypeP256, decoded[len(p256PubPrefix):], nil
	default:
		return KeyTypeUnknown, nil, fmt.Errorf("did: unsupported did:key multicodec prefix")
	}
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if b[i] != p {
			return false
		}
	}
	return true
}
