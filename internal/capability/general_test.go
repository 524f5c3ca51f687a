package capability

import (
	"encoding/json"
	"testing"
)

func TestGeneralSemanticsEnablement(t *testing.T) {
	sem := General{}
	held, ok := Parse(sem, "api:user", "user/post", json.RawMessage(`[{}]`))
	if !ok {
		t.Fatal("failed to parse held capability")
	}
	required, ok := Parse(sem, "api:user/1", "user/post", json.RawMessage(`[{}]`))
	if !ok {
		t.Fatal("failed to parse required capability")
	}
	if !held.Enables(required) {
		t.Error("api:user/user/post must enable api:user/1/user/post")
	}
	if required.Enables(held) {
		t.Error("the reverse must not hold")
	}
}

func TestGeneralSemanticsRejectsMalformedAbility(t *testing.T) {
	sem := General{}
	if _, ok := Parse(sem, "api:user", "", json.RawMessage(`[{}]`)); ok {
		t.Error("empty ability must fail to parse")
	}
}
