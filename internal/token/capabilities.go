package token

import (
	"encoding/json"
	"fmt"
)

// EncodeCapabilities renders claims in the canonical nested-map form:
// { resource_uri: { ability: caveat_array, ... }, ... }.
func EncodeCapabilities(claims []CapabilityClaim) (json.RawMessage, error) {
	nested := make(map[string]map[string]json.RawMessage, len(claims))
	for _, c := range claims {
		abilities, ok := nested[c.Resource]
		if !ok {
			abilities = make(map[string]json.RawMessage)
			nested[c.Resource] = abilities
		}
		abilities[c.Ability] = c.Caveat
	}
	out, err := json.Marshal(nested)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeCapabilities accepts either the canonical nested-map form or the
// legacy flat-array form and returns the claims: flat-form claims in array
// order, nested-form claims in no defined order (Go map iteration). A
// literal empty-array caveat (`[]`, meaning "no capability") on any entry
// fails the whole decode — spec §4.2 treats it as likely a bug, not a
// silently-droppable entry.
func DecodeCapabilities(raw json.RawMessage) ([]CapabilityClaim, error) {
	trimmed := trimSpace(raw)
	if len(trimmed) == 0 {
		return nil, parseErr("missing capabilities", nil)
	}
	switch trimmed[0] {
	case '[':
		return decodeFlatCapabilities(trimmed)
	case '{':
		return decodeNestedCapabilities(trimmed)
	default:
		return nil, parseErr("capabilities must be an object or array", nil)
	}
}

func decodeNestedCapabilities(raw json.RawMessage) ([]CapabilityClaim, error) {
	var nested map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, parseErr("invalid nested capabilities form", err)
	}
	claims := make([]CapabilityClaim, 0, len(nested))
	for resource, abilities := range nested {
		for ability, caveat := range abilities {
			if err := rejectEmptyCaveat(caveat); err != nil {
				return nil, err
			}
			claims = append(claims, CapabilityClaim{Resource: resource, Ability: ability, Caveat: caveat})
		}
	}
	return claims, nil
}

type flatCapability struct {
	With string `json:"with"`
	Can  string `json:"can"`
}

func decodeFlatCapabilities(raw json.RawMessage) ([]CapabilityClaim, error) {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, parseErr("invalid flat capabilities form", err)
	}
	claims := make([]CapabilityClaim, 0, len(entries))
	for _, entry := range entries {
		var flat flatCapability
		withRaw, hasWith := entry["with"]
		canRaw, hasCan := entry["can"]
		if !hasWith || !hasCan {
			return nil, parseErr("flat capability entry missing with/can", nil)
		}
		if err := json.Unmarshal(withRaw, &flat.With); err != nil {
			return nil, parseErr("invalid flat capability 'with'", err)
		}
		if err := json.Unmarshal(canRaw, &flat.Can); err != nil {
			return nil, parseErr("invalid flat capability 'can'", err)
		}
		caveatObj := make(map[string]json.RawMessage, len(entry))
		for k, v := range entry {
			if k == "with" || k == "can" {
				continue
			}
			caveatObj[k] = v
		}
		caveatBytes, err := json.Marshal(caveatObj)
		if err != nil {
			return nil, err
		}
		if err := rejectEmptyCaveat(caveatBytes); err != nil {
			return nil, err
		}
		claims = append(claims, CapabilityClaim{Resource: flat.With, Ability: flat.Can, Caveat: caveatBytes})
	}
	return claims, nil
}

func rejectEmptyCaveat(raw json.RawMessage) error {
	t := trimSpace(raw)
	if string(t) == "[]" {
		return parseErr(fmt.Sprintf("capability caveat %q implies no capability and is rejected on parse", string(raw)), nil)
	}
	return nil
}

func trimSpace(raw json.RawMessage) json.RawMessage {
	i, j := 0, len(raw)
	for i < j && isSpace(raw[i]) {
		i++
	}
	for j > i && isSpace(raw[j-1]) {
		j--
	}
	return raw[i:j]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
