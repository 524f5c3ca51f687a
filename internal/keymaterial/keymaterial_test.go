package keymaterial

import (
	"strings"
	"testing"

	"github.com/yeying-community/ucan/internal/did"
)

func TestEd25519MaterialSignVerify(t *testing.T) {
	mat, err := GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(mat.DID(), "did:key:z") {
		t.Errorf("unexpected did: %s", mat.DID())
	}
	data := []byte("signing input")
	sig, err := mat.Sign(data)
	if err != nil {
		t.Fatal(err)
	}
	verifier, err := (did.Parser{}).Parse(mat.DID())
	if err != nil {
		t.Fatal(err)
	}
	if !verifier.Verify(data, sig) {
		t.Error("signature must verify against the material's own DID")
	}
}

func TestSecp256k1MaterialSignVerify(t *testing.T) {
	mat, err := GenerateSecp256k1()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(mat.DID(), "did:pkh:eth:") {
		t.Errorf("unexpected did: %s", mat.DID())
	}
	data := []byte("signing input")
	sig, err := mat.Sign(data)
	if err != nil {
		t.Fatal(err)
	}
	verifier, err := (did.Parser{}).Parse(mat.DID())
	if err != nil {
		t.Fatal(err)
	}
	if !verifier.Verify(data, sig) {
		t.Error("signature must verify against the material's own DID")
	}
}
