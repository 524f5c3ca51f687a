// Package validator implements single-token structural, cryptographic, and
// temporal validation, plus parent/child link validation used when
// attaching a proof into a chain (spec §4.4).
package validator

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yeying-community/ucan/internal/capability"
	"github.com/yeying-community/ucan/internal/codec"
	"github.com/yeying-community/ucan/internal/keymaterial"
	"github.com/yeying-community/ucan/internal/token"
)

// Clock returns the current time as POSIX seconds. Tests supply a fixed clock.
type Clock func() int64

// WallClock is the default Clock.
func WallClock() int64 { return time.Now().Unix() }

// Options configures a Validate call.
type Options struct {
	Now              Clock
	AcceptedVersions []string
	Logger           *zap.Logger
}

// defaultAcceptedVersions is the ucv set accepted when Options names none.
// Versions are compared as exact strings, so other 0.10.x releases are not
// accepted unless listed in Options.AcceptedVersions.
var defaultAcceptedVersions = []string{"0.10.0", "0.10.0-canary"}

func (o Options) now() int64 {
	if o.Now != nil {
		return o.Now()
	}
	return WallClock()
}

func (o Options) accepted() []string {
	if len(o.AcceptedVersions) > 0 {
		return o.AcceptedVersions
	}
	return defaultAcceptedVersions
}

func (o Options) debug(msg string, fields ...zap.Field) {
	if o.Logger != nil {
		o.Logger.Debug(msg, fields...)
	}
}

// Validate checks a single token's structure, signature, and temporal
// bounds (spec §4.4 steps 1-6). It does not validate proof links; see
// ValidateLink for that.
func Validate(t *token.Token, parser keymaterial.DidParser, opts Options) error {
	if !acceptVersion(t.Version, opts.accepted()) {
		err := &ParseErrorUnsupportedVersion{Version: t.Version}
		opts.debug("unsupported ucv", zap.String("ucv", t.Version))
		return err
	}

	verifier, err := parser.Parse(t.Issuer)
	if err != nil {
		opts.debug("did resolution failed", zap.String("iss", t.Issuer), zap.Error(err))
		return &CryptoError{Reason: "failed to resolve issuer DID", Err: err}
	}
	if verifier.Algorithm() != "" && t.Algorithm != "" && verifier.Algorithm() != t.Algorithm {
		opts.debug("algorithm mismatch", zap.String("want", verifier.Algorithm()), zap.String("got", t.Algorithm))
		return &CryptoError{Reason: fmt.Sprintf("unknown or mismatched algorithm %q", t.Algorithm)}
	}
	if !verifier.Verify(t.SignedBytes, t.Signature) {
		opts.debug("signature verification failed", zap.String("iss", t.Issuer))
		return &CryptoError{Reason: "signature verification failed"}
	}

	now := opts.now()
	if t.IsExpired(now) {
		opts.debug("token expired", zap.Int64("exp", *t.Expiration), zap.Int64("now", now))
		return &TemporalError{Reason: "expired"}
	}
	if t.IsTooEarly(now) {
		opts.debug("token not yet active", zap.Int64("nbf", *t.NotBefore), zap.Int64("now", now))
		return &TemporalError{Reason: "not yet active"}
	}
	if t.NotBefore != nil && t.Expiration != nil && *t.NotBefore > *t.Expiration {
		return &TemporalError{Reason: "not_before is after expiration"}
	}

	for _, cidStr := range t.Proofs {
		if _, err := codec.ParseCID(cidStr); err != nil {
			return err
		}
	}

	sem := capability.General{}
	for _, c := range t.Capabilities {
		if _, ok := capability.Parse(sem, c.Resource, c.Ability, json.RawMessage(c.Caveat)); !ok {
			return fmt.Errorf("ucan: capability %q#%q failed to parse under general semantics", c.Resource, c.Ability)
		}
	}

	return nil
}

// ParseErrorUnsupportedVersion reports an unsupported or unrecognized ucv.
type ParseErrorUnsupportedVersion struct {
	Version string
}

func (e *ParseErrorUnsupportedVersion) Error() string {
	return fmt.Sprintf("ucan: unsupported version %q", e.Version)
}

func acceptVersion(v string, accepted []string) bool {
	for _, a := range accepted {
		if a == v {
			return true
		}
	}
	return false
}

// ValidateLink checks that child may be attached as a proof beneath parent:
// the parent's audience must equal the child's issuer, and the child's
// [nbf, exp] window must lie within the parent's (spec §4.4 "Link
// validation"). A missing bound is unbounded on the side that is missing
// it; the child cannot widen an absent parent bound into a narrower one
// because the parent's absence already means unbounded.
func ValidateLink(parent, child *token.Token) error {
	if parent.Audience != child.Issuer {
		return &LinkError{Reason: "audience does not match issuer"}
	}
	if !boundLE(child.Expiration, parent.Expiration) || !boundGE(child.NotBefore, parent.NotBefore) {
		return &TemporalError{Reason: "lifetime exceeds attenuation"}
	}
	return nil
}

// boundLE reports child <= parent for an upper bound (expiration), treating
// a missing bound as +infinity.
func boundLE(child, parent *int64) bool {
	if parent == nil {
		return true
	}
	if child == nil {
		return false
	}
	return *child <= *parent
}

// boundGE reports child >= parent for a lower bound (not_before), treating
// a missing bound as -infinity.
func boundGE(child, parent *int64) bool {
	if parent == nil {
		return true
	}
	if child == nil {
		return false
	}
	return *child >= *parent
}
