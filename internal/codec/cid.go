package codec

import (
	"fmt"
	"hash"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
	"lukechampine.com/blake3"
)

// blake3Code is the multicodec table entry for blake3 (variable-length);
// go-multihash does not register it by default, so we do it here.
const blake3Code = 0x1e

func init() {
	multihash.Register(blake3Code, func() hash.Hash {
		h, err := blake3.New(32, nil)
		if err != nil {
			panic(fmt.Sprintf("ucan: blake3 hasher init: %v", err))
		}
		return h
	})
}

// Hasher identifies a multihash function code used for CID derivation.
type Hasher uint64

// DefaultHasher is Blake3-256, the spec's default (§4.2, §6).
const DefaultHasher Hasher = blake3Code

// DeriveCID computes the content identifier of the full JWT-shaped token
// string, multihashed with hasher (zero value means DefaultHasher) and
// wrapped in a CID v1 with the raw codec, rendered as a base32-lowercase
// multibase string (spec §4.2, §6).
func DeriveCID(jwt string, hasher Hasher) (string, error) {
	if hasher == 0 {
		hasher = DefaultHasher
	}
	mh, err := multihash.Sum([]byte(jwt), uint64(hasher), -1)
	if err != nil {
		return "", fmt.Errorf("ucan: cid derivation: %w", err)
	}
	c := cid.NewCidV1(uint64(multicodec.Raw), mh)
	s, err := c.StringOfBase(multibase.Base32)
	if err != nil {
		return "", fmt.Errorf("ucan: cid multibase encode: %w", err)
	}
	return s, nil
}

// ParseCID validates that s is a well-formed CID string, per spec §4.4's
// structural check on every proofs entry.
func ParseCID(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("ucan: malformed cid %q: %w", s, err)
	}
	return c, nil
}
