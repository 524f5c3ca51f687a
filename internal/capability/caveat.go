package capability

import (
	"encoding/json"
	"reflect"
)

// Caveat is a normalized array of JSON objects. An empty array means "no
// capability" (most restrictive); a single empty object means "no
// restrictions" (least restrictive).
type Caveat []map[string]interface{}

// NormalizeCaveat accepts either a JSON array of objects or a single JSON
// object and returns the normalized array form. An empty input ("null" or
// missing) normalizes to the unconstrained single-object form, matching a
// caveat-less capability claim.
func NormalizeCaveat(raw json.RawMessage) (Caveat, error) {
	trimmed := trimJSONSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Caveat{{}}, nil
	}
	if trimmed[0] == '[' {
		var arr []map[string]interface{}
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, err
		}
		return Caveat(arr), nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	return Caveat{obj}, nil
}

func trimJSONSpace(raw json.RawMessage) json.RawMessage {
	i, j := 0, len(raw)
	for i < j && isJSONSpace(raw[i]) {
		i++
	}
	for j > i && isJSONSpace(raw[j-1]) {
		j--
	}
	return raw[i:j]
}

func isJSONSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Subsumes reports whether c (held) subsumes other (required): every object
// in other must be covered by at least one object in c.
func (c Caveat) Subsumes(other Caveat) bool {
	for _, want := range other {
		if !c.coversOne(want) {
			return false
		}
	}
	return true
}

func (c Caveat) coversOne(want map[string]interface{}) bool {
	for _, have := range c {
		if objectCovers(have, want) {
			return true
		}
	}
	return false
}

// objectCovers reports whether every key in x is present in y with an equal
// JSON value.
func objectCovers(x, y map[string]interface{}) bool {
	for k, xv := range x {
		yv, ok := y[k]
		if !ok || !reflect.DeepEqual(xv, yv) {
			return false
		}
	}
	return true
}

// IsEmpty reports the "no capability" caveat: an empty array.
func (c Caveat) IsEmpty() bool { return len(c) == 0 }

// MarshalJSON emits the canonical array form, even for a single entry.
func (c Caveat) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]map[string]interface{}(c))
}
