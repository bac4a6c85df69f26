package protocol

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
)

func TestIntentMessage(t *testing.T) {
	original := Intent{
		Type:       TypeIntent,
		RequestID:  "req-1",
		Op:         OpCreateRoom,
		Actor:      "0xa11ce",
		PublicKey:  "ab01",
		Nonce:      7,
		Signature:  []byte{1, 2, 3},
		BuyIn:      100,
		SmallBlind: 1,
		BigBlind:   2,
		MaxPlayers: 6,
	}

	data, err := original.MarshalMsg(nil)
	require.NoError(t, err)

	var decoded Intent
	rest, err := decoded.UnmarshalMsg(data)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, original, decoded)
}

func TestResultMessage(t *testing.T) {
	original := Result{Type: TypeResult, RequestID: "req-2", Code: "room_full", Reason: "room full", Room: 3}
	data, err := Marshal(&original)
	require.NoError(t, err)

	var decoded Result
	require.NoError(t, Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestEventMessage(t *testing.T) {
	original := Event{Type: TypeEvent, Kind: "vote_cast", Room: 1, Actor: "0xa", Candidate: "0xb", At: 1700000000000000000}
	data, err := Marshal(&original)
	require.NoError(t, err)

	msg, err := Decode(data)
	require.NoError(t, err)
	require.IsType(t, &Event{}, msg)
	assert.Equal(t, original, *msg.(*Event))
}

func TestMsgsizeBoundsEncoding(t *testing.T) {
	msgs := []interface {
		msgp.Marshaler
		msgp.Sizer
	}{
		&Intent{Type: TypeIntent, RequestID: "req-9", Op: OpVoteWinner, Actor: "0xa11ce", Nonce: 1 << 40, Signature: make([]byte, 64), Room: 12, Candidate: "0xb0b"},
		&Result{Type: TypeResult, RequestID: "req-9", OK: true, Room: 12, Actor: "0xb0b"},
		&Event{Type: TypeEvent, Kind: "settled", Room: 12, Actor: "0xb0b", Amount: 300, At: -1},
		&Error{Type: TypeError, Code: "bad_request", Message: "expected intent frame"},
	}
	for _, m := range msgs {
		data, err := m.MarshalMsg(nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(data), m.Msgsize(), "%T", m)
	}
}

func TestMarshalSetsIntentType(t *testing.T) {
	data, err := Marshal(&Intent{Op: OpWatch, Room: 4})
	require.NoError(t, err)

	typ, err := PeekType(data)
	require.NoError(t, err)
	assert.Equal(t, TypeIntent, typ)
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	o := msgp.AppendMapHeader(nil, 3)
	o = msgp.AppendString(o, "future")
	o = msgp.AppendArrayHeader(o, 2)
	o = msgp.AppendInt64(o, 1)
	o = msgp.AppendString(o, "x")
	o = msgp.AppendString(o, "type")
	o = msgp.AppendString(o, TypeError)
	o = msgp.AppendString(o, "message")
	o = msgp.AppendString(o, "boom")

	msg, err := Decode(o)
	require.NoError(t, err)
	assert.Equal(t, &Error{Type: TypeError, Message: "boom"}, msg)
}

func TestUnknownMessageType(t *testing.T) {
	_, err := Marshal(struct{}{})
	assert.ErrorIs(t, err, ErrUnknownMessageType)
	assert.ErrorIs(t, Unmarshal(nil, &struct{}{}), ErrUnknownMessageType)

	o := msgp.AppendMapHeader(nil, 1)
	o = msgp.AppendString(o, "type")
	o = msgp.AppendString(o, "bogus")
	_, err = Decode(o)
	assert.ErrorIs(t, err, ErrUnknownMessageType)

	o = msgp.AppendMapHeader(nil, 1)
	o = msgp.AppendString(o, "kind")
	o = msgp.AppendString(o, "x")
	_, err = PeekType(o)
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestTruncatedFrame(t *testing.T) {
	data, err := Marshal(&Result{Type: TypeResult, Reason: "already joined"})
	require.NoError(t, err)

	var decoded Result
	assert.Error(t, Unmarshal(data[:len(data)-3], &decoded))
}

func TestSigningPayloadCoversOperationFields(t *testing.T) {
	base := Intent{Op: OpJoinRoom, Actor: "0xABC", Nonce: 1, Room: 2, Amount: 100}
	same := base
	same.RequestID = "different"
	same.Signature = []byte{9}
	same.Actor = "0xabc"
	assert.Equal(t, base.SigningPayload(), same.SigningPayload())

	for name, mutate := range map[string]func(*Intent){
		"nonce":  func(i *Intent) { i.Nonce++ },
		"room":   func(i *Intent) { i.Room++ },
		"amount": func(i *Intent) { i.Amount++ },
		"op":     func(i *Intent) { i.Op = OpVoteWinner },
	} {
		changed := base
		mutate(&changed)
		assert.NotEqual(t, base.SigningPayload(), changed.SigningPayload(), name)
	}
}

func TestMarshalRaceCondition(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := Result{Type: TypeResult, RequestID: fmt.Sprintf("req-%d", i), Room: uint64(i)}
			data, err := Marshal(&want)
			if !assert.NoError(t, err) {
				return
			}
			var got Result
			if assert.NoError(t, Unmarshal(data, &got)) {
				assert.Equal(t, want, got)
			}
		}(i)
	}
	wg.Wait()
}

func BenchmarkMarshalIntent(b *testing.B) {
	intent := &Intent{Op: OpRecordAction, Actor: "0xa11ce", Nonce: 42, Room: 1, Action: "raise", Amount: 50}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Marshal(intent); err != nil {
			b.Fatal(err)
		}
	}
}
