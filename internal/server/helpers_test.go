package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/identity"
	"github.com/lox/pokerescrow/internal/protocol"
	"github.com/lox/pokerescrow/internal/reputation"
)

type testServer struct {
	srv    *Server
	http   *httptest.Server
	engine *escrow.Engine
	store  *reputation.MemoryStore
	nonces map[string]uint64
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := reputation.NewMemoryStore()
	hub := NewHub(logger)
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC))
	engine := escrow.NewEngine(logger, store, escrow.WithClock(clock), escrow.WithEventSink(hub))

	srv, err := New(logger, engine, store, hub, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = srv.seq.Run(ctx) }()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hub.closeAll()
		ts.Close()
		cancel()
	})

	return &testServer{srv: srv, http: ts, engine: engine, store: store, nonces: make(map[string]uint64)}
}

// signed fills in the identity fields of in for key with the next nonce.
func (ts *testServer) signed(t *testing.T, key *identity.KeyPair, in protocol.Intent) protocol.Intent {
	t.Helper()
	ts.nonces[key.Address()]++
	in.Actor = key.Address()
	in.PublicKey = key.PublicHex()
	in.Nonce = ts.nonces[key.Address()]
	sig, err := key.Sign(in.SigningPayload())
	require.NoError(t, err)
	in.Signature = sig
	return in
}

func (ts *testServer) post(t *testing.T, body any) (int, protocol.Result) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.http.URL+"/intents", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var res protocol.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return resp.StatusCode, res
}

// submit signs and posts in, requiring success.
func (ts *testServer) submit(t *testing.T, key *identity.KeyPair, in protocol.Intent) protocol.Result {
	t.Helper()
	status, res := ts.post(t, ts.signed(t, key, in))
	require.Equal(t, http.StatusOK, status, "%s: %s %s", in.Op, res.Code, res.Reason)
	require.True(t, res.OK)
	return res
}

func (ts *testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func seededKey(name string) *identity.KeyPair {
	return identity.FromSeed([]byte("server-test-" + name))
}
