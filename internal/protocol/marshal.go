package protocol

import (
	"errors"
	"sync"

	"github.com/tinylib/msgp/msgp"
)

// ErrUnknownMessageType is returned for values and frames this package cannot encode
// or decode.
var ErrUnknownMessageType = errors.New("protocol: unknown message type")

// Pool of scratch buffers to avoid an allocation per frame
var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 256)
		return &b
	},
}

// Marshal serializes a message to msgpack format
func Marshal(v any) ([]byte, error) {
	var m msgp.Marshaler
	switch msg := v.(type) {
	case *Intent:
		if msg.Type == "" {
			msg.Type = TypeIntent
		}
		m = msg
	case *Result:
		m = msg
	case *Event:
		m = msg
	case *Error:
		m = msg
	default:
		return nil, ErrUnknownMessageType
	}

	bp := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bp)

	buf, err := m.MarshalMsg((*bp)[:0])
	if err != nil {
		return nil, err
	}
	*bp = buf

	// Copy so callers never alias the pooled buffer
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// Unmarshal deserializes msgpack data into a message
func Unmarshal(data []byte, v any) error {
	var u msgp.Unmarshaler
	switch msg := v.(type) {
	case *Intent:
		u = msg
	case *Result:
		u = msg
	case *Event:
		u = msg
	case *Error:
		u = msg
	default:
		return ErrUnknownMessageType
	}
	_, err := u.UnmarshalMsg(data)
	return err
}

// PeekType returns the "type" field of a frame without decoding the rest.
func PeekType(data []byte) (string, error) {
	n, bts, err := msgp.ReadMapHeaderBytes(data)
	if err != nil {
		return "", err
	}
	var field []byte
	for ; n > 0; n-- {
		field, bts, err = msgp.ReadMapKeyZC(bts)
		if err != nil {
			return "", err
		}
		if msgp.UnsafeString(field) == "type" {
			t, _, err := msgp.ReadStringBytes(bts)
			return t, err
		}
		if bts, err = msgp.Skip(bts); err != nil {
			return "", err
		}
	}
	return "", ErrUnknownMessageType
}

// Decode reads any server or client frame, returning a pointer to the concrete
// message.
func Decode(data []byte) (any, error) {
	typ, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	var msg any
	switch typ {
	case TypeIntent:
		msg = &Intent{}
	case TypeResult:
		msg = &Result{}
	case TypeEvent:
		msg = &Event{}
	case TypeError:
		msg = &Error{}
	default:
		return nil, ErrUnknownMessageType
	}
	if err := Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
