package gobolt

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cleishm/gobolt/internal/chunking"
	"github.com/cleishm/gobolt/internal/message"
	"github.com/cleishm/gobolt/packstream"
)

// Connection owns one negotiated protocol session over a byte
// transport: its chunking streams, its request pipeline, and its
// lifecycle state.
type Connection struct {
	transport io.ReadWriteCloser
	pipe      *pipeline
	version   protocolVersion
	connID    string
	log       *slog.Logger

	userAgent string
}

// String reports a short identifier for log lines and error messages:
// the connection's correlation ID and negotiated protocol version.
func (c *Connection) String() string {
	return fmt.Sprintf("conn[%s]@%s", c.connID, c.version)
}

// IsDefunct reports whether the connection's state machine has
// reached Defunct, after which every operation returns
// SessionEnded.
func (c *Connection) IsDefunct() bool {
	return c.pipe.state == stateDefunct
}

// CheckFailure reports the state of the connection's own state
// machine, independent of any particular result stream: nil when Ok,
// a StatementEvaluationFailed error while an ACK_FAILURE is pending
// (Failed), and the SessionEnded error once Defunct.
func (c *Connection) CheckFailure() error {
	switch c.pipe.checkFailureKind() {
	case KindSessionEnded:
		return c.pipe.defunctErr
	case KindStatementEvaluationFailed:
		return newConnError("CheckFailure", KindStatementEvaluationFailed, c.connID, nil)
	default:
		return nil
	}
}

// Run enqueues RUN(statement, params) followed by PULL_ALL and returns
// a ResultStream handle immediately; replies are only consumed as the
// stream is driven.
func (c *Connection) Run(statement string, params []packstream.MapEntry) (*ResultStream, error) {
	rs := newResultStream(c)
	argv := []packstream.Value{packstream.String(statement), packstream.Map(params)}
	if err := c.pipe.enqueue(message.Run, argv, false, nil, rs.runCallbacks()); err != nil {
		return nil, err
	}
	if err := c.pipe.enqueue(message.PullAll, nil, true, rs.pool, rs.pullCallbacks()); err != nil {
		return nil, err
	}
	return rs, nil
}

// Send enqueues RUN(statement, params) followed by DISCARD_ALL, for
// fire-and-forget execution: the returned stream reports no records,
// only the terminal summary or failure.
func (c *Connection) Send(statement string, params []packstream.MapEntry) (*ResultStream, error) {
	rs := newResultStream(c)
	argv := []packstream.Value{packstream.String(statement), packstream.Map(params)}
	if err := c.pipe.enqueue(message.Run, argv, false, nil, rs.runCallbacks()); err != nil {
		return nil, err
	}
	if err := c.pipe.enqueue(message.DiscardAll, nil, true, rs.pool, rs.pullCallbacks()); err != nil {
		return nil, err
	}
	return rs, nil
}

// Reset issues RESET on the connection: every stream opened before the
// reset reports SessionReset on its next observation, and the
// connection returns to Ok without waiting for an ACK_FAILURE.
func (c *Connection) Reset() error {
	return c.pipe.reset()
}

// Close drains any remaining pipeline traffic with a RESET, then tears
// down the transport. It is safe to call more than once.
func (c *Connection) Close() error {
	if !c.IsDefunct() {
		_ = c.pipe.reset()
	}
	return c.transport.Close()
}

// newChunkedStreams wraps a transport in the writer/reader pair that
// frame messages over it.
func newChunkedStreams(rw io.ReadWriter) (*chunking.Writer, *chunking.Reader) {
	return chunking.NewWriter(rw), chunking.NewReader(rw)
}
