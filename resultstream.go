package gobolt

import (
	"errors"
	"strings"

	"github.com/cleishm/gobolt/arena"
	"github.com/cleishm/gobolt/packstream"
)

// ResultStream is a handle bound to a single RUN plus its follow-up
// PULL_ALL or DISCARD_ALL: it lazily consumes RECORD
// messages from the pipeline, buffering fetched-but-not-yet-delivered
// records in FIFO order.
type ResultStream struct {
	conn *Connection
	pool *arena.Pool // backs every Record this stream produces

	// resetEpoch is the connection's pipeline resetEpoch captured when
	// this stream was opened; checkReset compares it against the
	// pipeline's current value to notice a Connection.Reset that
	// happened after this stream was created.
	resetEpoch int

	fieldsReady bool
	fields      []string

	ready []*Record // FIFO of fetched, undelivered records

	ended   bool
	endErr  error // nil on clean completion
	summary *Summary
}

func newResultStream(conn *Connection) *ResultStream {
	return &ResultStream{conn: conn, pool: arena.NewPool(8192), resetEpoch: conn.pipe.resetEpoch}
}

// checkReset poisons the stream the first time it notices the
// connection has been reset since the stream was opened, regardless
// of whether the stream had already reached a terminal state by some
// other path (a clean Success, an unrelated Failure, or nothing at
// all): every stream opened before a Reset reports SessionReset on
// its first observation afterward, overriding whatever it would
// otherwise have reported, and any records already buffered in ready
// but not yet delivered are discarded along with it. Once applied,
// rs.resetEpoch is advanced to match so later calls are a no-op
// rather than re-poisoning an already-final stream.
// Called at the top of every accessor that could otherwise hand
// back or wait on stream state.
func (rs *ResultStream) checkReset() {
	if rs.conn.pipe.resetEpoch == rs.resetEpoch {
		return
	}
	rs.resetEpoch = rs.conn.pipe.resetEpoch
	rs.ended = true
	rs.ready = nil
	rs.endErr = newConnError("fetch", KindSessionReset, rs.conn.connID, nil)
}

// runCallbacks wires RUN's reply to this stream: Success captures the
// field list, Failure/Ignored mark the stream ended before any record
// is ever seen.
func (rs *ResultStream) runCallbacks() requestCallbacks {
	return requestCallbacks{
		onSuccess: func(meta packstream.Value) error {
			rs.fieldsReady = true
			if fieldsVal, ok := meta.MapGet("fields"); ok {
				if items, ok := fieldsVal.List(); ok {
					rs.fields = make([]string, 0, len(items))
					for _, it := range items {
						if s, ok := it.Str(); ok {
							// s aliases the pipeline's scratch arena,
							// which the next RUN on this connection
							// reclaims; clone it so a retained field
							// name or Record.FieldName() stays valid
							// past that point.
							rs.fields = append(rs.fields, strings.Clone(s))
						}
					}
				}
			}
			return nil
		},
		onFailure: func(meta packstream.Value) error {
			rs.fieldsReady = true
			rs.endWithFailure(meta)
			return nil
		},
		onIgnored: func(cause error) error {
			rs.fieldsReady = true
			rs.endWithCause(cause)
			return nil
		},
	}
}

// pullCallbacks wires PULL_ALL's (or DISCARD_ALL's) replies to this
// stream: Record appends to the ready queue, Success decodes the
// terminal summary and ends the stream cleanly, Failure/Ignored end it
// with an error.
func (rs *ResultStream) pullCallbacks() requestCallbacks {
	return requestCallbacks{
		onRecord: func(values []packstream.Value) error {
			rs.ready = append(rs.ready, &Record{fields: rs.fields, values: values})
			return nil
		},
		onSuccess: func(meta packstream.Value) error {
			s, err := decodeSummary(meta)
			if err != nil {
				return err
			}
			rs.summary = s
			rs.ended = true
			rs.endErr = nil
			return nil
		},
		onFailure: func(meta packstream.Value) error {
			rs.endWithFailure(meta)
			return nil
		},
		onIgnored: func(cause error) error {
			rs.endWithCause(cause)
			return nil
		},
	}
}

func (rs *ResultStream) endWithFailure(meta packstream.Value) {
	code, _ := meta.MapGet("code")
	msg, _ := meta.MapGet("message")
	codeStr, _ := code.Str()
	msgStr, _ := msg.Str()
	rs.ended = true
	rs.ready = nil
	rs.endErr = &Error{Op: "fetch", Kind: KindStatementEvaluationFailed, Code: codeStr, Message: msgStr}
}

// endWithCause ends the stream abnormally (connection failure or
// reset). Any records already buffered in ready but not yet delivered
// are discarded: the server considers everything about this request
// abandoned, so nothing further from it may reach the caller.
func (rs *ResultStream) endWithCause(cause error) {
	rs.ended = true
	rs.ready = nil
	rs.endErr = cause
}

// drivePipelineOnce forces the connection's pipeline to process
// exactly one more reply, advancing toward either another record or
// the stream's end. Reading one reply at a time (rather than draining
// to the pending request's terminal reply) is what lets a caller stop
// partway through a PULL_ALL's records — e.g. after peek(2) has
// buffered three of them — and still call Connection.Reset before the
// terminal SUCCESS has even been read off the wire.
func (rs *ResultStream) drivePipelineOnce() error {
	if len(rs.conn.pipe.queue) == 0 {
		return nil
	}
	return rs.conn.pipe.recvOne()
}

// CheckFailure drains enough of the pipeline to have a definite answer
// for the RUN reply, returning the terminal failure if any.
func (rs *ResultStream) CheckFailure() error {
	rs.checkReset()
	for !rs.fieldsReady && !rs.ended {
		if err := rs.drivePipelineOnce(); err != nil {
			return err
		}
	}
	return rs.endErr
}

// NFields reports the number of fields in each record, blocking until
// RUN's success has been observed.
func (rs *ResultStream) NFields() (int, error) {
	if err := rs.awaitFields(); err != nil {
		return 0, err
	}
	return len(rs.fields), nil
}

// FieldName returns the name of the i'th field, blocking until RUN's
// success has been observed.
func (rs *ResultStream) FieldName(i int) (string, error) {
	if err := rs.awaitFields(); err != nil {
		return "", err
	}
	if i < 0 || i >= len(rs.fields) {
		return "", newError("FieldName", KindOutOfRange, nil)
	}
	return rs.fields[i], nil
}

func (rs *ResultStream) awaitFields() error {
	rs.checkReset()
	for !rs.fieldsReady {
		if rs.ended {
			return rs.endErr
		}
		if err := rs.drivePipelineOnce(); err != nil {
			return err
		}
	}
	return nil
}

// FetchNext drives the pipeline until either a record appears or the
// stream ends, advancing the logical cursor past the returned record.
// It returns (nil, nil) at clean stream end and (nil, err) if the
// stream ended with an error.
func (rs *ResultStream) FetchNext() (*Record, error) {
	rs.checkReset()
	if err := rs.fillTo(1); err != nil {
		return nil, err
	}
	if len(rs.ready) == 0 {
		return nil, rs.endErr
	}
	rec := rs.ready[0]
	rs.ready = rs.ready[1:]
	return rec, nil
}

// Peek returns the record that the (depth+1)'th FetchNext call will
// return, without advancing the cursor. Peek(0) is the record the next
// FetchNext returns.
func (rs *ResultStream) Peek(depth int) (*Record, error) {
	if depth < 0 {
		return nil, newError("Peek", KindInvalidArgument, nil)
	}
	rs.checkReset()
	if err := rs.fillTo(depth + 1); err != nil {
		return nil, err
	}
	if depth >= len(rs.ready) {
		return nil, rs.endErr
	}
	return rs.ready[depth], nil
}

// fillTo drives the pipeline until the ready queue holds at least n
// records or the stream ends.
func (rs *ResultStream) fillTo(n int) error {
	for len(rs.ready) < n && !rs.ended {
		if err := rs.drivePipelineOnce(); err != nil {
			return err
		}
	}
	return nil
}

// Retain increments rec's reference count so its values remain valid
// past further stream progress; callers must pair every Retain with a
// Release.
func (rs *ResultStream) Retain(rec *Record) { rec.refs++ }

// Release decrements rec's reference count. Its values are only
// reclaimed when the stream's backing pool is drained at Close.
func (rs *ResultStream) Release(rec *Record) {
	if rec.refs > 0 {
		rec.refs--
	}
}

// Summary returns the terminal summary (update counters, plan/profile)
// once the stream has ended cleanly, or KindNoResultsAvailable if the
// stream has not yet reached that point.
func (rs *ResultStream) Summary() (*Summary, error) {
	if rs.summary == nil {
		return nil, newError("Summary", KindNoResultsAvailable, nil)
	}
	return rs.summary, nil
}

// Close discards any remaining records, draining the pipeline until
// the stream's RUN/PULL_ALL pair has been fully observed, then releases
// the stream's record pool. It does not issue RESET. Close returns nil
// once the stream has ended, whether cleanly or with an error (that
// error is reported by FetchNext/Peek/CheckFailure, not by Close), and
// when the connection goes defunct while draining; an error returned
// by a reply callback while draining is passed through.
func (rs *ResultStream) Close() error {
	defer rs.pool.Reset()
	rs.checkReset()
	if rs.ended {
		return nil
	}
	for !rs.ended {
		if err := rs.drivePipelineOnce(); err != nil {
			var gerr *Error
			if errors.As(err, &gerr) && gerr.Kind == KindSessionEnded {
				return nil
			}
			return err
		}
	}
	return nil
}
