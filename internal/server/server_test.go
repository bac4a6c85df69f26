package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/identity"
	"github.com/lox/pokerescrow/internal/protocol"
	"github.com/lox/pokerescrow/internal/reputation"
)

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.http.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestRoundOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	alice, bob, carol := seededKey("alice"), seededKey("bob"), seededKey("carol")

	res := ts.submit(t, alice, protocol.Intent{Op: protocol.OpCreateRoom, BuyIn: 100, SmallBlind: 1, BigBlind: 2, MaxPlayers: 4})
	assert.Equal(t, uint64(0), res.Room)
	assert.Equal(t, alice.Address(), res.Actor)

	for _, k := range []*identity.KeyPair{alice, bob, carol} {
		ts.submit(t, k, protocol.Intent{Op: protocol.OpJoinRoom, Room: 0, Amount: 100})
	}
	ts.submit(t, alice, protocol.Intent{Op: protocol.OpStartRoom, Room: 0})
	ts.submit(t, alice, protocol.Intent{Op: protocol.OpRecordAction, Room: 0, Action: "bet", Amount: 20})
	ts.submit(t, bob, protocol.Intent{Op: protocol.OpRecordAction, Room: 0, Action: "call", Amount: 20})
	ts.submit(t, carol, protocol.Intent{Op: protocol.OpRecordAction, Room: 0, Action: "fold"})

	var folded foldedBody
	require.Equal(t, http.StatusOK, ts.get(t, "/rooms/0/folded/"+carol.Address(), &folded))
	assert.True(t, folded.Folded)

	ts.submit(t, alice, protocol.Intent{Op: protocol.OpVoteWinner, Room: 0, Candidate: bob.Address()})
	ts.submit(t, bob, protocol.Intent{Op: protocol.OpVoteWinner, Room: 0, Candidate: bob.Address()})
	ts.submit(t, alice, protocol.Intent{Op: protocol.OpFinalize, Room: 0, Candidate: bob.Address()})

	var view escrow.RoomView
	require.Equal(t, http.StatusOK, ts.get(t, "/rooms/0", &view))
	assert.True(t, view.Settled)
	assert.Equal(t, escrow.Actor(bob.Address()), view.Winner)
	assert.Zero(t, view.TotalPool)

	var players []escrow.Actor
	require.Equal(t, http.StatusOK, ts.get(t, "/rooms/0/players", &players))
	assert.Len(t, players, 3)

	var actions []escrow.Action
	require.Equal(t, http.StatusOK, ts.get(t, "/rooms/0/actions", &actions))
	require.Len(t, actions, 3)
	assert.Equal(t, escrow.ActionFold, actions[2].Type)

	var ballots []escrow.Ballot
	require.Equal(t, http.StatusOK, ts.get(t, "/rooms/0/ballots", &ballots))
	assert.Len(t, ballots, 2)

	var entry reputation.Entry
	require.Equal(t, http.StatusOK, ts.get(t, "/reputation/"+strings.ToUpper(bob.Address()), &entry))
	assert.Equal(t, int64(3), entry.Score)

	var board []reputation.Entry
	require.Equal(t, http.StatusOK, ts.get(t, "/reputation", &board))
	require.Len(t, board, 3)
	assert.Equal(t, bob.Address(), board[0].Actor)

	var book ledgerBody
	require.Equal(t, http.StatusOK, ts.get(t, "/ledger", &book))
	assert.True(t, book.Verified)
	assert.Len(t, book.Entries, 4)

	var rooms []escrow.RoomView
	require.Equal(t, http.StatusOK, ts.get(t, "/rooms", &rooms))
	assert.Len(t, rooms, 1)
}

func TestIntentRejections(t *testing.T) {
	ts := newTestServer(t)
	alice, bob := seededKey("alice"), seededKey("bob")
	ts.submit(t, alice, protocol.Intent{Op: protocol.OpCreateRoom, BuyIn: 100})
	ts.submit(t, alice, protocol.Intent{Op: protocol.OpJoinRoom, Room: 0, Amount: 100})

	t.Run("engine rejection", func(t *testing.T) {
		status, res := ts.post(t, ts.signed(t, alice, protocol.Intent{Op: protocol.OpJoinRoom, Room: 0, Amount: 100}))
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, string(escrow.CodeAlreadyJoined), res.Code)
	})

	t.Run("unknown room", func(t *testing.T) {
		status, res := ts.post(t, ts.signed(t, bob, protocol.Intent{Op: protocol.OpJoinRoom, Room: 7, Amount: 100}))
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, string(escrow.CodeNotFound), res.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		in := ts.signed(t, bob, protocol.Intent{Op: protocol.OpJoinRoom, Room: 0, Amount: 100})
		in.Amount = 1
		status, res := ts.post(t, in)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, CodeUnauthorized, res.Code)
	})

	t.Run("actor mismatch", func(t *testing.T) {
		in := ts.signed(t, bob, protocol.Intent{Op: protocol.OpJoinRoom, Room: 0, Amount: 100})
		in.Actor = alice.Address()
		status, _ := ts.post(t, in)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("stale nonce", func(t *testing.T) {
		in := ts.signed(t, bob, protocol.Intent{Op: protocol.OpJoinRoom, Room: 0, Amount: 100})
		status, _ := ts.post(t, in)
		require.Equal(t, http.StatusOK, status)
		status, res := ts.post(t, in)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, CodeStaleNonce, res.Code)
	})

	t.Run("schema violation", func(t *testing.T) {
		status, res := ts.post(t, map[string]any{"op": "join_room", "room": 0, "amount": 100})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, CodeBadRequest, res.Code)

		status, _ = ts.post(t, map[string]any{"op": "watch", "nonce": 1, "room": 0})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestReadEndpointErrors(t *testing.T) {
	ts := newTestServer(t)

	var body errorBody
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/rooms/3", &body))
	assert.Equal(t, string(escrow.CodeNotFound), body.Code)
	assert.Equal(t, "room 3 not found", body.Reason)

	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/rooms/abc", &body))
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/rooms/1/ballots", nil))

	var rooms []escrow.RoomView
	assert.Equal(t, http.StatusOK, ts.get(t, "/rooms", &rooms))
	assert.Empty(t, rooms)
}

func TestUnsignedModeTrustsActor(t *testing.T) {
	ts := newTestServer(t, WithVerifier(identity.NoopVerifier{}))
	status, res := ts.post(t, map[string]any{"op": "create_room", "nonce": 1, "actor": "Dealer", "buy_in": 50})
	require.Equal(t, http.StatusOK, status, res.Reason)
	assert.Equal(t, "dealer", res.Actor)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusOf(""))
	assert.Equal(t, http.StatusNotFound, statusOf(string(escrow.CodeNotFound)))
	assert.Equal(t, http.StatusBadRequest, statusOf(string(escrow.CodeInvalidConfig)))
	assert.Equal(t, http.StatusConflict, statusOf(string(escrow.CodeNoMajority)))
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(CodeUnavailable))
}

func TestServeShutdownExportsLedger(t *testing.T) {
	logger := zerolog.New(io.Discard)
	store := reputation.NewMemoryStore()
	hub := NewHub(logger)
	engine := escrow.NewEngine(logger, store, escrow.WithEventSink(hub))
	path := filepath.Join(t.TempDir(), "out", "ledger.json")

	hooked := false
	srv, err := New(logger, engine, store, hub, WithLedgerExport(path), WithShutdownHook(func() { hooked = true }))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.True(t, hooked)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc LedgerExport
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.True(t, doc.Verified)
	assert.Empty(t, doc.Entries)
}
