package did

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const ethDIDPrefix = "did:pkh:eth:"

// IsEthDID reports whether didStr is a did:pkh:eth: identifier.
func IsEthDID(didStr string) bool {
	return strings.HasPrefix(didStr, ethDIDPrefix)
}

// EncodeEthDID builds a did:pkh:eth: identifier for an Ethereum address.
func EncodeEthDID(addr common.Address) string {
	return ethDIDPrefix + strings.ToLower(addr.Hex())
}

// DecodeEthDID extracts the lowercase hex address from a did:pkh:eth: string.
func DecodeEthDID(didStr string) (string, bool) {
	if !IsEthDID(didStr) {
		return "", false
	}
	addr := strings.TrimPrefix(didStr, ethDIDPrefix)
	if !common.IsHexAddress(addr) {
		return "", false
	}
	return strings.ToLower(addr), true
}
