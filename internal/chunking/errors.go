// Package chunking implements the chunked message framing layer: one
// message is the concatenation of one or more length-prefixed chunks,
// terminated by a zero-length chunk.
package chunking

import "errors"

var (
	// ErrProtocolViolation reports a malformed chunk header or a
	// truncated chunk payload.
	ErrProtocolViolation = errors.New("chunking: protocol violation")

	// ErrEndOfMessage is returned by Reader.Read once the zero-length
	// terminator chunk has been consumed. It is not io.EOF: the
	// underlying transport is still open and AdvanceMessage re-arms
	// the Reader for the next message.
	ErrEndOfMessage = errors.New("chunking: end of message")

	// ErrIoError wraps a short write to, or a write failure from, the
	// underlying transport.
	ErrIoError = errors.New("chunking: io error")
)
