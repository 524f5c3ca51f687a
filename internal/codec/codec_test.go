package codec

import (
	"encoding/json"
	"testing"

	"github.com/yeying-community/ucan/internal/token"
)

func sampleToken(t *testing.T) *token.Token {
	t.Helper()
	exp := int64(1721032725)
	return &token.Token{
		Version:   "0.10.0",
		Algorithm: "EdDSA",
		Issuer:    "did:key:z6MkrM",
		Audience:  "did:key:zabcde",
		Expiration: &exp,
		Nonce:     "abc123",
		Facts:     []token.Fact{{Key: "a", Value: json.RawMessage(`"b"`)}},
		Capabilities: []token.CapabilityClaim{
			{Resource: "mailto:username@example.com", Ability: "msg/receive", Caveat: json.RawMessage(`[{}]`)},
			{Resource: "mailto:username@example.com", Ability: "msg/send", Caveat: json.RawMessage(`[{"draft":true},{"publish":true,"topic":["foo"]}]`)},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tok := sampleToken(t)
	signable, err := EncodeSignable(tok)
	if err != nil {
		t.Fatal(err)
	}
	tok.SignedBytes = signable
	tok.Signature = []byte("fake-signature-bytes")

	full, err := EncodeSigned(tok)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Decode(full)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Issuer != tok.Issuer || decoded.Audience != tok.Audience {
		t.Errorf("issuer/audience mismatch: %+v", decoded)
	}
	if decoded.Algorithm != tok.Algorithm {
		t.Errorf("algorithm mismatch: got %q want %q", decoded.Algorithm, tok.Algorithm)
	}
	if string(decoded.SignedBytes) != string(tok.SignedBytes) {
		t.Error("signed bytes must round-trip byte for byte")
	}
	if len(decoded.Capabilities) != len(tok.Capabilities) {
		t.Errorf("expected %d capabilities, got %d", len(tok.Capabilities), len(decoded.Capabilities))
	}

	// re-encoding the decoded token (reusing its cached SignedBytes) must be stable
	again, err := EncodeSigned(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if again != full {
		t.Error("re-encoding a decoded token must reproduce identical bytes")
	}
}

func TestDecodeRejectsWrongSegmentCount(t *testing.T) {
	if _, err := Decode("only.two"); err == nil {
		t.Error("expected error for malformed token")
	}
}
