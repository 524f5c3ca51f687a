package token

import (
	"encoding/json"
	"sort"
)

// EncodeFacts renders facts as a JSON object. Insertion order is preserved
// when possible; encoding/json's map marshaling does not preserve order, so
// this builds the object text directly from the ordered slice.
func EncodeFacts(facts []Fact) (json.RawMessage, error) {
	if len(facts) == 0 {
		return nil, nil
	}
	buf := []byte{'{'}
	for i, f := range facts {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		value := f.Value
		if len(value) == 0 {
			value = json.RawMessage("null")
		}
		buf = append(buf, value...)
	}
	buf = append(buf, '}')
	return json.RawMessage(buf), nil
}

// DecodeFacts parses a facts JSON object. Key order is not recoverable from
// encoding/json, so entries are returned in lexicographic key order, which
// spec §3 explicitly permits.
func DecodeFacts(raw json.RawMessage) ([]Fact, error) {
	if len(trimSpace(raw)) == 0 {
		return nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, parseErr("invalid facts object", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	facts := make([]Fact, 0, len(keys))
	for _, k := range keys {
		facts = append(facts, Fact{Key: k, Value: m[k]})
	}
	return facts, nil
}

// InlineProofsKey is the well-known facts key used to embed proof JWTs
// inline for receivers lacking store access (builder's add_proof_facts).
const InlineProofsKey = "prf"

// InlineProof looks up an inline-embedded proof token by CID string.
func (t *Token) InlineProof(cid string) (string, bool) {
	raw, ok := t.Fact(InlineProofsKey)
	if !ok {
		return "", false
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", false
	}
	jwt, ok := m[cid]
	return jwt, ok
}

// SetInlineProof embeds a proof token's encoded JWT under its CID in
// facts["prf"], creating the object if needed.
func (t *Token) SetInlineProof(cid, jwt string) error {
	raw, ok := t.Fact(InlineProofsKey)
	m := map[string]string{}
	if ok {
		if err := json.Unmarshal(raw, &m); err != nil {
			return parseErr("existing facts.prf is not an object", err)
		}
	}
	m[cid] = jwt
	encoded, err := json.Marshal(m)
	if err != nil {
		return err
	}
	t.SetFact(InlineProofsKey, encoded)
	return nil
}
