// Package codec implements the UCAN wire format: three unpadded base64url
// segments joined by "." (header.payload.signature), and the CID derivation
// over the full token bytes (spec §4.2, §6).
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yeying-community/ucan/internal/token"
)

type wireHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type wirePayload struct {
	Ucv string          `json:"ucv"`
	Iss string          `json:"iss"`
	Aud string          `json:"aud"`
	Nbf *int64          `json:"nbf,omitempty"`
	Exp *int64          `json:"exp,omitempty"`
	Nnc string          `json:"nnc,omitempty"`
	Cap json.RawMessage `json:"cap"`
	Fct json.RawMessage `json:"fct,omitempty"`
	Prf []string        `json:"prf,omitempty"`
}

var b64 = base64.RawURLEncoding

// EncodeSignable builds the header and payload JSON for t, base64url-encodes
// each, and joins them with "." — the exact bytes a signer must sign. It
// does not touch t.Signature or t.SignedBytes; callers (the builder) decide
// when to commit those.
func EncodeSignable(t *token.Token) ([]byte, error) {
	header := wireHeader{Alg: t.Algorithm, Typ: "JWT"}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}

	capJSON, err := token.EncodeCapabilities(t.Capabilities)
	if err != nil {
		return nil, err
	}
	factsJSON, err := token.EncodeFacts(t.Facts)
	if err != nil {
		return nil, err
	}

	payload := wirePayload{
		Ucv: t.Version,
		Iss: t.Issuer,
		Aud: t.Audience,
		Nbf: t.NotBefore,
		Exp: t.Expiration,
		Nnc: t.Nonce,
		Cap: capJSON,
		Fct: factsJSON,
		Prf: t.Proofs,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	signable := b64.EncodeToString(headerJSON) + "." + b64.EncodeToString(payloadJSON)
	return []byte(signable), nil
}

// EncodeSigned joins the signable bytes with the base64url-encoded
// signature to produce the full wire string, and caches it on t.
func EncodeSigned(t *token.Token) (string, error) {
	if len(t.SignedBytes) == 0 {
		signable, err := EncodeSignable(t)
		if err != nil {
			return "", err
		}
		t.SignedBytes = signable
	}
	full := string(t.SignedBytes) + "." + b64.EncodeToString(t.Signature)
	t.SetEncoded(full)
	return full, nil
}

// Decode parses a "header.payload.signature" string into a Token. It does
// not verify the signature or check temporal bounds — that is the
// validator's job (spec §4.4).
func Decode(jwt string) (*token.Token, error) {
	parts := strings.Split(jwt, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("ucan: malformed token: expected 3 segments, got %d", len(parts))
	}

	headerBytes, err := b64.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("ucan: invalid header segment: %w", err)
	}
	payloadBytes, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("ucan: invalid payload segment: %w", err)
	}
	sigBytes, err := b64.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("ucan: invalid signature segment: %w", err)
	}

	var header wireHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("ucan: invalid header JSON: %w", err)
	}
	var payload wirePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, fmt.Errorf("ucan: invalid payload JSON: %w", err)
	}

	claims, err := token.DecodeCapabilities(payload.Cap)
	if err != nil {
		return nil, err
	}
	facts, err := token.DecodeFacts(payload.Fct)
	if err != nil {
		return nil, err
	}

	t := &token.Token{
		Version:      payload.Ucv,
		Algorithm:    header.Alg,
		Issuer:       payload.Iss,
		Audience:     payload.Aud,
		Expiration:   payload.Exp,
		NotBefore:    payload.Nbf,
		Nonce:        payload.Nnc,
		Facts:        facts,
		Capabilities: claims,
		Proofs:       payload.Prf,
		SignedBytes:  []byte(parts[0] + "." + parts[1]),
		Signature:    sigBytes,
	}
	t.SetEncoded(jwt)
	return t, nil
}
