package did

import (
	"crypto/ed25519"
	"testing"
)

func TestEd25519KeyDIDRoundTrip(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	didStr, err := EncodeKeyDID(KeyTypeEd25519, pub)
	if err != nil {
		t.Fatal(err)
	}
	kt, decoded, err := DecodeKeyDID(didStr)
	if err != nil {
		t.Fatal(err)
	}
	if kt != KeyTypeEd25519 {
		t.Errorf("expected KeyTypeEd25519, got %v", kt)
	}
	if string(decoded) != string(pub) {
		t.Error("decoded public key does not match original")
	}
}

func TestDecodeKeyDIDRejectsUnknownPrefix(t *testing.T) {
	if _, _, err := DecodeKeyDID("did:key:z6MkrandomBadData"); err == nil {
		t.Error("expected error for unrecognized did:key payload")
	}
}

func TestDecodeKeyDIDRejectsNonKeyDID(t *testing.T) {
	if _, _, err := DecodeKeyDID("did:web:example.com"); err == nil {
		t.Error("expected error for non did:key string")
	}
}

func TestBase58RoundTrip(t *testing.T) {
	data := []byte{0, 0, 1, 2, 3, 255, 254, 10}
	encoded := base58Encode(data)
	decoded, err := base58Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != string(data) {
		t.Errorf("base58 round-trip mismatch: got %v want %v", decoded, data)
	}
}
