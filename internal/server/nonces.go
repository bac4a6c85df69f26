package server

import (
	"errors"
	"fmt"
)

// ErrStaleNonce is returned for an intent whose nonce is not above the actor's last
// accepted nonce.
var ErrStaleNonce = errors.New("server: stale nonce")

// nonceTracker remembers the highest nonce accepted per actor. It is only used
// from inside sequenced operations and needs no locking.
type nonceTracker struct {
	last map[string]uint64
}

func newNonceTracker() *nonceTracker {
	return &nonceTracker{last: make(map[string]uint64)}
}

// accept records nonce for actor if it is strictly greater than the previous one.
func (t *nonceTracker) accept(actor string, nonce uint64) error {
	if prev, ok := t.last[actor]; ok && nonce <= prev {
		return fmt.Errorf("%w: got %d, last accepted %d", ErrStaleNonce, nonce, prev)
	}
	if nonce == 0 {
		return fmt.Errorf("%w: nonce must be positive", ErrStaleNonce)
	}
	t.last[actor] = nonce
	return nil
}
