package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()
	key := Generate()
	msg := []byte("join_room|0|100|1")

	sig, err := key.Sign(msg)
	require.NoError(t, err)

	addr, err := Verify(key.PublicHex(), msg, sig)
	require.NoError(t, err)
	assert.Equal(t, key.Address(), addr)

	_, err = Verify(key.PublicHex(), []byte("join_room|0|100|2"), sig)
	require.ErrorIs(t, err, ErrBadSignature)

	_, err = Verify(Generate().PublicHex(), msg, sig)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestAddressFormat(t *testing.T) {
	t.Parallel()
	addr := Generate().Address()
	assert.True(t, strings.HasPrefix(addr, "0x"))
	assert.Len(t, addr, 42)
}

func TestFromSeedIsDeterministic(t *testing.T) {
	t.Parallel()
	a := FromSeed([]byte("seed-1"))
	b := FromSeed([]byte("seed-1"))
	c := FromSeed([]byte("seed-2"))
	assert.Equal(t, a.Address(), b.Address())
	assert.NotEqual(t, a.Address(), c.Address())
}

func TestPrivateKeyRoundTrip(t *testing.T) {
	t.Parallel()
	key := Generate()
	parsed, err := ParsePrivateKey("0x" + key.PrivateHex() + "\n")
	require.NoError(t, err)
	assert.Equal(t, key.PublicHex(), parsed.PublicHex())

	_, err = ParsePrivateKey("not-hex")
	require.ErrorIs(t, err, ErrBadKey)
	_, err = ParsePublicKey("abcd")
	require.ErrorIs(t, err, ErrBadKey)
}

func TestSchnorrVerifier(t *testing.T) {
	t.Parallel()
	key := FromSeed([]byte("alice"))
	payload := []byte("vote_winner|3|0xb0b|7")
	sig, err := key.Sign(payload)
	require.NoError(t, err)

	var v SchnorrVerifier
	actor, err := v.Verify(Claim{PublicKey: key.PublicHex(), Signature: sig, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, key.Address(), actor)

	actor, err = v.Verify(Claim{Actor: strings.ToUpper(key.Address()[2:]), PublicKey: key.PublicHex(), Signature: sig, Payload: payload})
	require.ErrorIs(t, err, ErrActorMismatch, "bare hex without prefix is a different actor")
	assert.Empty(t, actor)

	_, err = v.Verify(Claim{Actor: "0xb0b", PublicKey: key.PublicHex(), Signature: sig, Payload: payload})
	require.ErrorIs(t, err, ErrActorMismatch)
}

func TestNoopVerifier(t *testing.T) {
	t.Parallel()
	var v NoopVerifier
	actor, err := v.Verify(Claim{Actor: "0xa11ce"})
	require.NoError(t, err)
	assert.Equal(t, "0xa11ce", actor)

	_, err = v.Verify(Claim{})
	require.ErrorIs(t, err, ErrActorMismatch)
}
