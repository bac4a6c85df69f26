package identity

import (
	"errors"
	"strings"
)

// ErrActorMismatch indicates the claimed actor is not the signing key's address.
var ErrActorMismatch = errors.New("identity: actor does not match key")

// Claim is what a submitted intent says about its author.
type Claim struct {
	Actor     string
	PublicKey string
	Signature []byte
	Payload   []byte
}

// Verifier establishes which actor is behind a claim.
type Verifier interface {
	// Verify returns the authenticated actor, or an error wrapping ErrBadKey,
	// ErrBadSignature or ErrActorMismatch.
	Verify(c Claim) (string, error)
}

// SchnorrVerifier requires a valid signature from the key whose address is the
// claimed actor. An empty claimed actor adopts the key's address.
type SchnorrVerifier struct{}

func (SchnorrVerifier) Verify(c Claim) (string, error) {
	addr, err := Verify(c.PublicKey, c.Payload, c.Signature)
	if err != nil {
		return "", err
	}
	if c.Actor != "" && !strings.EqualFold(c.Actor, addr) {
		return "", ErrActorMismatch
	}
	return addr, nil
}

// NoopVerifier trusts the claimed actor. It is meant for local development and
// tests.
type NoopVerifier struct{}

func (NoopVerifier) Verify(c Claim) (string, error) {
	if c.Actor == "" {
		return "", ErrActorMismatch
	}
	return c.Actor, nil
}
