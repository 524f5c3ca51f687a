package ucan

import (
	"encoding/json"
	"testing"

	"github.com/yeying-community/ucan/internal/capability"
)

// TestS1EchoRoundTrip reproduces spec scenario S1: build, sign, decode, and
// confirm structural fields and signed bytes survive the round trip, with a
// CID stable under re-encode.
func TestS1EchoRoundTrip(t *testing.T) {
	issuer, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	exp := int64(1721032725)

	_, jwt, err := NewBuilder(issuer).
		ForAudience("did:key:zabcde").
		WithExpiration(exp).
		WithFact("a", json.RawMessage(`"b"`)).
		WithNonce().
		ClaimingCapability("mailto:username@example.com", "msg/receive", json.RawMessage(`[{}]`)).
		ClaimingCapability("mailto:username@example.com", "msg/send", json.RawMessage(`[{"draft":true},{"publish":true,"topic":["foo"]}]`)).
		Sign()
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Decode(jwt)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Issuer != issuer.DID() || decoded.Audience != "did:key:zabcde" {
		t.Errorf("issuer/audience mismatch: %+v", decoded)
	}
	if decoded.Expiration == nil || *decoded.Expiration != exp {
		t.Errorf("expiration mismatch: %v", decoded.Expiration)
	}
	if len(decoded.Capabilities) != 2 {
		t.Fatalf("expected 2 capabilities, got %d", len(decoded.Capabilities))
	}

	reJWT := decoded.Encoded()
	if reJWT != jwt {
		t.Error("decoded token's cached Encoded() must match original wire string")
	}
}

// TestS2Containment reproduces spec scenario S2 via the facade's default
// General semantics.
func TestS2Containment(t *testing.T) {
	held, ok := capability.Parse(General{}, "api:user", "user/post", json.RawMessage(`[{}]`))
	if !ok {
		t.Fatal("expected held capability to parse")
	}
	required, ok := capability.Parse(General{}, "api:user/1", "user/post", json.RawMessage(`[{}]`))
	if !ok {
		t.Fatal("expected required capability to parse")
	}
	if !held.Enables(required) {
		t.Error("api:user should enable api:user/1 under General semantics")
	}
	if required.Enables(held) {
		t.Error("api:user/1 must not enable the broader api:user")
	}
}

func TestS3SimpleDelegationViaVerify(t *testing.T) {
	alice, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	bob, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	carol, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}

	_, rootJWT, err := NewBuilder(alice).
		ForAudience(bob.DID()).
		WithExpiration(1000).
		ClaimingCapability("api:user/1", "user/post", json.RawMessage(`[{}]`)).
		Sign()
	if err != nil {
		t.Fatal(err)
	}

	st := NewMemoryStore()
	if _, err := st.WriteToken(rootJWT); err != nil {
		t.Fatal(err)
	}

	bb := NewBuilder(bob).ForAudience(carol.DID()).WithExpiration(500).
		ClaimingCapability("api:user/1", "user/post", json.RawMessage(`[{}]`))
	if _, err := bb.WitnessedBy(rootJWT); err != nil {
		t.Fatal(err)
	}
	_, carolJWT, err := bb.Sign()
	if err != nil {
		t.Fatal(err)
	}

	resp, err := Verify(carolJWT, VerifyOptions{
		Store:              st,
		Now:                func() int64 { return 100 },
		RequiredResource:   "api:user/1",
		RequiredAbility:    "user/post",
		RequiredCaveat:     json.RawMessage(`[{}]`),
		RequiredOriginator: alice.DID(),
	})
	if err != nil {
		t.Fatalf("expected S3 delegation to verify, got %v", err)
	}
	if len(resp.Capabilities) != 1 || resp.Capabilities[0].Expiration == nil || *resp.Capabilities[0].Expiration != 500 {
		t.Errorf("unexpected verify response: %+v", resp)
	}
}

func TestS4LifetimeViolationViaVerify(t *testing.T) {
	alice, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	bob, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	carol, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}

	_, rootJWT, err := NewBuilder(alice).
		ForAudience(bob.DID()).
		WithExpiration(1000).
		ClaimingCapability("api:user/1", "user/post", json.RawMessage(`[{}]`)).
		Sign()
	if err != nil {
		t.Fatal(err)
	}

	st := NewMemoryStore()
	if _, err := st.WriteToken(rootJWT); err != nil {
		t.Fatal(err)
	}

	// Bob's expiration (2000) is wider than the root's (1000): a lifetime violation.
	bb := NewBuilder(bob).ForAudience(carol.DID()).WithExpiration(2000).
		ClaimingCapability("api:user/1", "user/post", json.RawMessage(`[{}]`))
	if _, err := bb.WitnessedBy(rootJWT); err != nil {
		t.Fatal(err)
	}
	_, carolJWT, err := bb.Sign()
	if err != nil {
		t.Fatal(err)
	}

	_, err = Verify(carolJWT, VerifyOptions{
		Store: st,
		Now:   func() int64 { return 100 },
	})
	if _, ok := err.(*TemporalError); !ok {
		t.Fatalf("expected *TemporalError for lifetime violation, got %v (%T)", err, err)
	}
}

func TestVerifyMissingRequiredCapabilityIsError(t *testing.T) {
	issuer, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	_, jwt, err := NewBuilder(issuer).
		ForAudience("did:key:zaudience").
		WithExpiration(1000).
		ClaimingCapability("api:user/1", "user/post", json.RawMessage(`[{}]`)).
		Sign()
	if err != nil {
		t.Fatal(err)
	}

	_, err = Verify(jwt, VerifyOptions{
		Now:              func() int64 { return 100 },
		RequiredResource: "api:admin",
		RequiredAbility:  "admin/delete",
	})
	if err == nil {
		t.Error("expected missing-required-capability to be an error")
	}
}

func TestVerifyFactsTemplateSubstitution(t *testing.T) {
	issuer, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	_, jwt, err := NewBuilder(issuer).
		ForAudience("did:key:zaudience").
		WithExpiration(1000).
		WithFact("user_id", json.RawMessage(`"42"`)).
		ClaimingCapability("api:user/42", "user/post", json.RawMessage(`[{}]`)).
		Sign()
	if err != nil {
		t.Fatal(err)
	}

	resp, err := Verify(jwt, VerifyOptions{
		Now:              func() int64 { return 100 },
		RequiredResource: "api:user/{user_id}",
		RequiredAbility:  "user/post",
	})
	if err != nil {
		t.Fatalf("expected templated required-resource to verify, got %v", err)
	}
	if resp.Facts["user_id"] == nil {
		t.Error("expected merged facts to include user_id")
	}
}
