package chain

import (
	"encoding/json"
	"testing"

	"github.com/yeying-community/ucan/internal/codec"
	"github.com/yeying-community/ucan/internal/did"
	"github.com/yeying-community/ucan/internal/keymaterial"
	"github.com/yeying-community/ucan/internal/store"
	"github.com/yeying-community/ucan/internal/token"
	"github.com/yeying-community/ucan/internal/validator"
)

func mustSign(t *testing.T, mat keymaterial.KeyMaterial, tok *token.Token) string {
	t.Helper()
	signable, err := codec.EncodeSignable(tok)
	if err != nil {
		t.Fatal(err)
	}
	tok.SignedBytes = signable
	sig, err := mat.Sign(signable)
	if err != nil {
		t.Fatal(err)
	}
	tok.Signature = sig
	jwt, err := codec.EncodeSigned(tok)
	if err != nil {
		t.Fatal(err)
	}
	return jwt
}

// buildS3Chain reproduces spec scenario S3/S4: Root R (Alice -> Bob) grants
// (api:user/1, user/post, [{}]); Bob (-> Carol) proves R claiming the same
// capability. rootExp/childExp let callers drive S3 (500 <= 1000, ok) vs S4
// (2000 > 1000, lifetime violation).
func buildS3Chain(t *testing.T, rootExp, childExp int64) (rootJWT, childJWT string, carol *keymaterial.Ed25519Material, st *store.Memory) {
	t.Helper()
	alice, err := keymaterial.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	bob, err := keymaterial.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	carol, err = keymaterial.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}

	root := &token.Token{
		Version:    "0.10.0",
		Algorithm:  alice.Algorithm(),
		Issuer:     alice.DID(),
		Audience:   bob.DID(),
		Expiration: &rootExp,
		Capabilities: []token.CapabilityClaim{
			{Resource: "api:user/1", Ability: "user/post", Caveat: json.RawMessage(`[{}]`)},
		},
	}
	rootJWT = mustSign(t, alice, root)

	st = store.NewMemory()
	rootCID, err := st.WriteToken(rootJWT)
	if err != nil {
		t.Fatal(err)
	}

	child := &token.Token{
		Version:    "0.10.0",
		Algorithm:  bob.Algorithm(),
		Issuer:     bob.DID(),
		Audience:   carol.DID(),
		Expiration: &childExp,
		Capabilities: []token.CapabilityClaim{
			{Resource: "api:user/1", Ability: "user/post", Caveat: json.RawMessage(`[{}]`)},
		},
		Proofs: []string{rootCID},
	}
	childJWT = mustSign(t, bob, child)
	return rootJWT, childJWT, carol, st
}

func TestBuildProofChainS3SimpleDelegation(t *testing.T) {
	_, childJWT, _, st := buildS3Chain(t, 1000, 500)

	opts := Options{
		Parser: did.Parser{},
		Store:  st,
		ValidatorOptions: validator.Options{
			Now: func() int64 { return 100 },
		},
	}
	pc, err := FromUcan(childJWT, opts)
	if err != nil {
		t.Fatalf("expected chain to build, got %v", err)
	}
	if len(pc.Proofs) != 1 {
		t.Fatalf("expected 1 resolved proof, got %d", len(pc.Proofs))
	}
	if pc.Proofs[0].Token.Issuer == "" {
		t.Error("expected resolved root proof to carry an issuer")
	}
}

func TestBuildProofChainS4LifetimeViolation(t *testing.T) {
	_, childJWT, _, st := buildS3Chain(t, 1000, 2000)

	opts := Options{
		Parser: did.Parser{},
		Store:  st,
		ValidatorOptions: validator.Options{
			Now: func() int64 { return 100 },
		},
	}
	_, err := FromUcan(childJWT, opts)
	if err == nil {
		t.Fatal("expected lifetime attenuation violation to fail chain assembly")
	}
}

func TestBuildProofChainMissingProofIsResourceError(t *testing.T) {
	_, childJWT, _, _ := buildS3Chain(t, 1000, 500)

	opts := Options{
		Parser: did.Parser{},
		Store:  store.NewMemory(), // empty: root CID was never written here
		ValidatorOptions: validator.Options{
			Now: func() int64 { return 100 },
		},
	}
	_, err := FromUcan(childJWT, opts)
	if _, ok := err.(*ResourceError); !ok {
		t.Fatalf("expected *ResourceError, got %v (%T)", err, err)
	}
}

func TestBuildProofChainDepthLimit(t *testing.T) {
	_, childJWT, carol, st := buildS3Chain(t, 1000, 500)

	// Carol extends the S3 chain by one more link, so the walk reaches depth
	// 2 (Carol's token at 0, Bob's at 1, Alice's root at 2).
	childCID, err := st.WriteToken(childJWT)
	if err != nil {
		t.Fatal(err)
	}
	grandExp := int64(400)
	grand := &token.Token{
		Version:    "0.10.0",
		Algorithm:  carol.Algorithm(),
		Issuer:     carol.DID(),
		Audience:   "did:key:zDave",
		Expiration: &grandExp,
		Proofs:     []string{childCID},
	}
	grandJWT := mustSign(t, carol, grand)

	opts := Options{
		Parser:   did.Parser{},
		Store:    st,
		MaxDepth: 1,
		ValidatorOptions: validator.Options{
			Now: func() int64 { return 100 },
		},
	}
	_, err = FromUcan(grandJWT, opts)
	if _, ok := err.(*DepthError); !ok {
		t.Fatalf("expected *DepthError with MaxDepth=1, got %v (%T)", err, err)
	}
}

func TestResolveRedelegationSelectAllMarksImmediateProofs(t *testing.T) {
	alice, err := keymaterial.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	bob, err := keymaterial.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	carol, err := keymaterial.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}

	rootExp := int64(1000)
	root := &token.Token{
		Version:    "0.10.0",
		Algorithm:  alice.Algorithm(),
		Issuer:     alice.DID(),
		Audience:   bob.DID(),
		Expiration: &rootExp,
		Capabilities: []token.CapabilityClaim{
			{Resource: "api:docs/*", Ability: "docs/read", Caveat: json.RawMessage(`[{}]`)},
		},
	}
	rootJWT := mustSign(t, alice, root)
	st := store.NewMemory()
	rootCID, err := st.WriteToken(rootJWT)
	if err != nil {
		t.Fatal(err)
	}

	childExp := int64(500)
	child := &token.Token{
		Version:    "0.10.0",
		Algorithm:  bob.Algorithm(),
		Issuer:     bob.DID(),
		Audience:   carol.DID(),
		Expiration: &childExp,
		Capabilities: []token.CapabilityClaim{
			{Resource: "ucan:*", Ability: "ucan/*", Caveat: json.RawMessage(`[{}]`)},
		},
		Proofs: []string{rootCID},
	}
	childJWT := mustSign(t, bob, child)

	pc, err := FromUcan(childJWT, Options{
		Parser: did.Parser{},
		Store:  st,
		ValidatorOptions: validator.Options{
			Now: func() int64 { return 100 },
		},
	})
	if err != nil {
		t.Fatalf("expected chain to build, got %v", err)
	}
	if len(pc.Proofs) != 1 || !pc.Redelegated[pc.Proofs[0].CID] {
		t.Error("expected the sole immediate proof to be marked redelegated by ucan:*")
	}
}
