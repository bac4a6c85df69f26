// Package ledger records escrow money movements: a deposit for every accepted buy-in
// and a payout for every settled pool. Entries are hash-chained so the journal can be
// verified end to end.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Kind is the direction of an entry.
type Kind string

const (
	KindDeposit Kind = "deposit"
	KindPayout  Kind = "payout"
)

const genesisHash = "0"

// ErrInsufficientEscrow is returned when a payout exceeds what a room holds.
var ErrInsufficientEscrow = errors.New("ledger: insufficient escrow")

// Entry is one journal line.
type Entry struct {
	Seq      uint64    `json:"seq"`
	Room     uint64    `json:"room"`
	Actor    string    `json:"actor"`
	Kind     Kind      `json:"kind"`
	Amount   uint64    `json:"amount"`
	At       time.Time `json:"at"`
	PrevHash string    `json:"prev_hash"`
	Hash     string    `json:"hash"`
}

// Balance is an actor's lifetime money movement through escrow.
type Balance struct {
	Deposited uint64 `json:"deposited"`
	Received  uint64 `json:"received"`
}

// Book is the journal plus the derived per-room and per-actor totals.
type Book struct {
	mu       sync.RWMutex
	entries  []Entry
	escrowed map[uint64]uint64
	balances map[string]Balance
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{
		escrowed: make(map[uint64]uint64),
		balances: make(map[string]Balance),
	}
}

// Deposit records a buy-in paid into room by actor.
func (b *Book) Deposit(room uint64, actor string, amount uint64, at time.Time) Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.escrowed[room] += amount
	bal := b.balances[actor]
	bal.Deposited += amount
	b.balances[actor] = bal
	return b.appendLocked(room, actor, KindDeposit, amount, at)
}

// Payout records amount leaving room's escrow to actor.
func (b *Book) Payout(room uint64, actor string, amount uint64, at time.Time) (Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	held := b.escrowed[room]
	if amount > held {
		return Entry{}, fmt.Errorf("%w: room %d holds %d, payout %d", ErrInsufficientEscrow, room, held, amount)
	}
	b.escrowed[room] = held - amount
	bal := b.balances[actor]
	bal.Received += amount
	b.balances[actor] = bal
	return b.appendLocked(room, actor, KindPayout, amount, at), nil
}

// Escrowed returns the amount currently held for room.
func (b *Book) Escrowed(room uint64) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.escrowed[room]
}

// Balance returns actor's totals.
func (b *Book) Balance(actor string) Balance {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[actor]
}

// Entries returns a copy of the journal.
func (b *Book) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Verify checks sequence continuity and hash linkage of the whole journal.
func (b *Book) Verify() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	prev := genesisHash
	for i, e := range b.entries {
		if e.Seq != uint64(i) {
			return fmt.Errorf("entry %d: invalid seq %d", i, e.Seq)
		}
		if e.PrevHash != prev {
			return fmt.Errorf("entry %d: invalid prev hash: expected %s, got %s", i, prev, e.PrevHash)
		}
		if want := hashEntry(e); e.Hash != want {
			return fmt.Errorf("entry %d: invalid hash: expected %s, got %s", i, want, e.Hash)
		}
		prev = e.Hash
	}
	return nil
}

func (b *Book) appendLocked(room uint64, actor string, kind Kind, amount uint64, at time.Time) Entry {
	prev := genesisHash
	if n := len(b.entries); n > 0 {
		prev = b.entries[n-1].Hash
	}
	e := Entry{
		Seq:      uint64(len(b.entries)),
		Room:     room,
		Actor:    actor,
		Kind:     kind,
		Amount:   amount,
		At:       at.UTC(),
		PrevHash: prev,
	}
	e.Hash = hashEntry(e)
	b.entries = append(b.entries, e)
	return e
}

func hashEntry(e Entry) string {
	record := fmt.Sprintf("%d|%d|%s|%s|%d|%d|%s", e.Seq, e.Room, e.Actor, e.Kind, e.Amount, e.At.UnixNano(), e.PrevHash)
	sum := sha256.Sum256([]byte(record))
	return hex.EncodeToString(sum[:])
}
