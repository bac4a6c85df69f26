// Package identity provides actor keys, Schnorr signatures over the Ed25519 group
// and the address derived from a public key that the escrow engine uses as the
// actor identifier.
package identity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"
)

var suite suites.Suite = suites.MustFind("Ed25519")

var (
	// ErrBadSignature indicates a signature that does not verify under the key.
	ErrBadSignature = errors.New("identity: bad signature")

	// ErrBadKey indicates a key that cannot be decoded.
	ErrBadKey = errors.New("identity: bad key")
)

// addressLen is the number of hex digits kept from the key hash.
const addressLen = 40

// KeyPair is an actor's signing key.
type KeyPair struct {
	Private kyber.Scalar
	Public  kyber.Point
}

// Generate returns a fresh random key pair.
func Generate() *KeyPair {
	priv := suite.Scalar().Pick(suite.RandomStream())
	return fromScalar(priv)
}

// FromSeed derives a key pair deterministically from seed.
func FromSeed(seed []byte) *KeyPair {
	priv := suite.Scalar().Pick(suite.XOF(seed))
	return fromScalar(priv)
}

func fromScalar(priv kyber.Scalar) *KeyPair {
	return &KeyPair{Private: priv, Public: suite.Point().Mul(priv, nil)}
}

// ParsePrivateKey decodes a hex private key as written by PrivateHex.
func ParsePrivateKey(s string) (*KeyPair, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	priv := suite.Scalar()
	if err := priv.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	return fromScalar(priv), nil
}

// ParsePublicKey decodes a hex public key as written by PublicHex.
func ParsePublicKey(s string) (kyber.Point, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	pub := suite.Point()
	if err := pub.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	return pub, nil
}

// PrivateHex encodes the private scalar.
func (k *KeyPair) PrivateHex() string {
	return mustHex(k.Private)
}

// PublicHex encodes the public point.
func (k *KeyPair) PublicHex() string {
	return mustHex(k.Public)
}

// Address returns the actor identifier for this key.
func (k *KeyPair) Address() string {
	return AddressOf(k.Public)
}

// Sign produces a Schnorr signature over msg.
func (k *KeyPair) Sign(msg []byte) ([]byte, error) {
	return schnorr.Sign(suite, k.Private, msg)
}

// AddressOf derives "0x" followed by the first 40 hex digits of the hashed key.
func AddressOf(pub kyber.Point) string {
	h := suite.Hash()
	_, _ = pub.MarshalTo(h)
	return "0x" + hex.EncodeToString(h.Sum(nil))[:addressLen]
}

// Verify checks sig over msg under the hex public key and returns the signer's
// address.
func Verify(publicHex string, msg, sig []byte) (string, error) {
	pub, err := ParsePublicKey(publicHex)
	if err != nil {
		return "", err
	}
	if err := schnorr.Verify(suite, pub, msg, sig); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return AddressOf(pub), nil
}

type binaryMarshaler interface {
	MarshalBinary() ([]byte, error)
}

func mustHex(v binaryMarshaler) string {
	b, err := v.MarshalBinary()
	if err != nil {
		// Ed25519 scalars and points always marshal.
		panic(fmt.Sprintf("identity: marshal: %v", err))
	}
	return hex.EncodeToString(b)
}
