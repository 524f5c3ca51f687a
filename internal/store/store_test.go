package store

import "testing"

func TestMemoryWriteThenRequireRoundTrip(t *testing.T) {
	s := NewMemory()
	jwt := "aGVhZGVy.cGF5bG9hZA.c2ln"

	cid, err := s.WriteToken(jwt)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.RequireToken(cid)
	if err != nil {
		t.Fatal(err)
	}
	if got != jwt {
		t.Errorf("got %q, want %q", got, jwt)
	}
}

func TestMemoryWriteIsIdempotent(t *testing.T) {
	s := NewMemory()
	jwt := "aGVhZGVy.cGF5bG9hZA.c2ln"

	cid1, err := s.WriteToken(jwt)
	if err != nil {
		t.Fatal(err)
	}
	cid2, err := s.WriteToken(jwt)
	if err != nil {
		t.Fatal(err)
	}
	if cid1 != cid2 {
		t.Error("writing identical bytes twice must yield the same cid")
	}
}

func TestMemoryRequireTokenNotFound(t *testing.T) {
	s := NewMemory()
	if _, err := s.RequireToken("bafynotreal"); err == nil {
		t.Error("expected ErrNotFound for unindexed cid")
	} else if _, ok := err.(*ErrNotFound); !ok {
		t.Errorf("expected *ErrNotFound, got %T", err)
	}
}
