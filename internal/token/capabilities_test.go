package token

import (
	"encoding/json"
	"testing"
)

func TestEncodeDecodeCapabilitiesRoundTrip(t *testing.T) {
	claims := []CapabilityClaim{
		{Resource: "mailto:username@example.com", Ability: "msg/receive", Caveat: json.RawMessage(`[{}]`)},
		{Resource: "mailto:username@example.com", Ability: "msg/send", Caveat: json.RawMessage(`[{"draft":true},{"publish":true,"topic":["foo"]}]`)},
	}
	encoded, err := EncodeCapabilities(claims)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeCapabilities(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != len(claims) {
		t.Fatalf("expected %d claims, got %d", len(claims), len(decoded))
	}
}

func TestDecodeCapabilitiesFlatFormLegacy(t *testing.T) {
	flat := json.RawMessage(`[{"with":"api:user","can":"user/post","draft":true}]`)
	claims, err := DecodeCapabilities(flat)
	if err != nil {
		t.Fatal(err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	if claims[0].Resource != "api:user" || claims[0].Ability != "user/post" {
		t.Errorf("unexpected claim: %#v", claims[0])
	}
}

func TestDecodeCapabilitiesRejectsEmptyCaveat(t *testing.T) {
	nested := json.RawMessage(`{"api:user":{"user/post":[]}}`)
	if _, err := DecodeCapabilities(nested); err == nil {
		t.Error("expected error for empty caveat array")
	}
}

func TestDecodeCapabilitiesRejectsMalformed(t *testing.T) {
	if _, err := DecodeCapabilities(json.RawMessage(`"not an object"`)); err == nil {
		t.Error("expected error for malformed capabilities")
	}
}
