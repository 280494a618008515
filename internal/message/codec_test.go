package message_test

import (
	"bytes"
	"testing"

	"github.com/cleishm/gobolt/arena"
	"github.com/cleishm/gobolt/internal/chunking"
	"github.com/cleishm/gobolt/internal/message"
	"github.com/cleishm/gobolt/packstream"
)

func TestSendRecvRoundTrip(t *testing.T) {
	var wire bytes.Buffer
	w := chunking.NewWriter(&wire)

	params := packstream.Map(nil)
	if err := message.Send(w, message.Run, []packstream.Value{packstream.String("RETURN 1"), params}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := message.Send(w, message.PullAll, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}

	r := chunking.NewReader(&wire)
	pool := arena.NewPool(0)

	tag, argv, err := message.Recv(r, pool)
	if err != nil {
		t.Fatalf("Recv (RUN): %v", err)
	}
	if tag != message.Run {
		t.Fatalf("tag = %v, want RUN", tag)
	}
	if len(argv) != 2 {
		t.Fatalf("argv len = %d, want 2", len(argv))
	}
	if s, ok := argv[0].Str(); !ok || s != "RETURN 1" {
		t.Fatalf("argv[0] = %v,%v, want \"RETURN 1\"", s, ok)
	}

	tag, argv, err = message.Recv(r, pool)
	if err != nil {
		t.Fatalf("Recv (PULL_ALL): %v", err)
	}
	if tag != message.PullAll {
		t.Fatalf("tag = %v, want PULL_ALL", tag)
	}
	if len(argv) != 0 {
		t.Fatalf("argv len = %d, want 0", len(argv))
	}
}

func TestRecvRejectsNonStructTopLevel(t *testing.T) {
	var wire bytes.Buffer
	w := chunking.NewWriter(&wire)
	if err := packstream.Serialize(packstream.Int(1), w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := w.FlushMessage(); err != nil {
		t.Fatalf("FlushMessage: %v", err)
	}

	r := chunking.NewReader(&wire)
	pool := arena.NewPool(0)
	if _, _, err := message.Recv(r, pool); err == nil {
		t.Fatalf("expected ErrProtocolViolation for non-Struct top level")
	}
}

func TestRecvRejectsTrailingBytes(t *testing.T) {
	var wire bytes.Buffer
	w := chunking.NewWriter(&wire)
	// One Struct value followed by a second value in the same message
	// (two values before the terminator): a protocol violation.
	if err := packstream.Serialize(packstream.Struct(uint8(message.Success), nil), w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := packstream.Serialize(packstream.Int(1), w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := w.FlushMessage(); err != nil {
		t.Fatalf("FlushMessage: %v", err)
	}

	r := chunking.NewReader(&wire)
	pool := arena.NewPool(0)
	if _, _, err := message.Recv(r, pool); err == nil {
		t.Fatalf("expected ErrProtocolViolation for trailing bytes")
	}
}
