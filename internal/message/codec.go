package message

import (
	"errors"
	"fmt"

	"github.com/cleishm/gobolt/arena"
	"github.com/cleishm/gobolt/internal/chunking"
	"github.com/cleishm/gobolt/packstream"
)

// Send writes a single Struct value whose signature is tag and whose
// fields are argv, then closes the chunk boundary with FlushMessage.
func Send(w *chunking.Writer, tag Tag, argv []packstream.Value) error {
	if err := packstream.Serialize(packstream.Struct(uint8(tag), argv), w); err != nil {
		return err
	}
	return w.FlushMessage()
}

// Recv reads exactly one message: it deserializes a value, asserts it
// is a Struct, and returns its signature as a Tag and its fields,
// allocated against pool. It then asserts that the Struct's fields were
// the entire message (no trailing bytes) and re-arms r for the next
// message. An unexpected top-level non-Struct value, or trailing bytes,
// is reported as ErrProtocolViolation.
func Recv(r *chunking.Reader, pool *arena.Pool) (Tag, []packstream.Value, error) {
	v, err := packstream.Deserialize(r, pool)
	if err != nil {
		return 0, nil, err
	}
	sig, ok := v.StructSig()
	if !ok {
		return 0, nil, fmt.Errorf("%w: top-level value is a %v, not a Struct", ErrProtocolViolation, v.Kind())
	}
	fields, _ := v.StructFields()

	var probe [1]byte
	if _, err := r.Read(probe[:]); !errors.Is(err, chunking.ErrEndOfMessage) {
		if err == nil {
			return 0, nil, fmt.Errorf("%w: trailing bytes after message", ErrProtocolViolation)
		}
		return 0, nil, err
	}
	r.AdvanceMessage()
	return Tag(sig), fields, nil
}
