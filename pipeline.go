package gobolt

import (
	"errors"
	"fmt"

	"github.com/cleishm/gobolt/arena"
	"github.com/cleishm/gobolt/internal/chunking"
	"github.com/cleishm/gobolt/internal/message"
	"github.com/cleishm/gobolt/packstream"
)

// defaultPipelineMax bounds the number of in-flight requests the
// pipeline will hold before enqueue reports SessionBusy.
const defaultPipelineMax = 64

// requestCallbacks is the per-request record the pipeline carries: the
// pipeline invokes exactly one of these as replies are observed. A
// Record reply invokes onRecord without popping the request; any of
// the other three pops it.
type requestCallbacks struct {
	onRecord  func(fields []packstream.Value) error
	onSuccess func(meta packstream.Value) error
	onFailure func(meta packstream.Value) error
	onIgnored func(cause error) error
}

type pendingRequest struct {
	tag        message.Tag
	expectsRecords bool
	recordPool *arena.Pool // used instead of the scratch pool when expectsRecords is set
	cb         requestCallbacks
}

// connState is the connection's Ok/Failed/Defunct state machine.
type connState uint8

const (
	stateOk connState = iota
	stateFailed
	stateDefunct
)

// pipeline is the bounded FIFO of in-flight requests for one
// connection. It is not safe for concurrent use; a
// connection and its pipeline are owned by exactly one goroutine.
type pipeline struct {
	w *chunking.Writer
	r *chunking.Reader

	scratch *arena.Pool // reset after each Success/Failure/Ignored reply; backs meta decoding

	queue []*pendingRequest // FIFO; queue[0] is head-of-line
	max   int

	state connState

	// resetCause is non-nil while a reset() call is draining replies
	// belonging to requests enqueued before it; Ignored replies observed
	// during that drain surface as SessionReset rather than
	// StatementEvaluationFailed.
	resetCause error

	// resetEpoch counts calls to reset() (it is advanced as each call
	// begins, before RESET is sent); a ResultStream
	// captures the epoch current at its creation and reports
	// SessionReset on its first observation after the epoch advances,
	// even for records it had already buffered but not yet delivered.
	resetEpoch int

	// defunctErr is the error every subsequent operation returns once
	// state is Defunct.
	defunctErr error
}

func newPipeline(w *chunking.Writer, r *chunking.Reader) *pipeline {
	return &pipeline{
		w:       w,
		r:       r,
		scratch: arena.NewPool(4096),
		max:     defaultPipelineMax,
	}
}

// enqueue writes tag/argv to the transport as a complete, terminated
// message and appends a request record to track its reply. Requests
// are sent eagerly, one wire message per enqueue call, so several can
// be queued back-to-back before sync() reads any of their replies.
func (p *pipeline) enqueue(tag message.Tag, argv []packstream.Value, expectsRecords bool, recordPool *arena.Pool, cb requestCallbacks) error {
	if p.state == stateDefunct {
		return p.defunctErr
	}
	if len(p.queue) >= p.max {
		return newError("enqueue", KindSessionBusy, fmt.Errorf("pipeline has %d requests in flight", p.max))
	}
	if err := message.Send(p.w, tag, argv); err != nil {
		return p.fail("enqueue", err)
	}
	p.queue = append(p.queue, &pendingRequest{
		tag:            tag,
		expectsRecords: expectsRecords,
		recordPool:     recordPool,
		cb:             cb,
	})
	return nil
}

// sync reads replies until the pipeline holds at most `until`
// outstanding requests (0 drains it completely). Every enqueued
// request was already written to the transport by enqueue, so sync
// only ever reads. Each reply invokes the head request's matching
// callback; Success/Ignored/Failure pop the head, Record does not.
func (p *pipeline) sync(until int) error {
	if p.state == stateDefunct {
		return p.defunctErr
	}
	for len(p.queue) > until {
		if err := p.recvOne(); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) recvOne() error {
	head := p.queue[0]
	pool := p.scratch
	if head.expectsRecords {
		pool = head.recordPool
	}
	tag, argv, err := message.Recv(p.r, pool)
	if err != nil {
		return p.fail("sync", err)
	}

	switch tag {
	case message.Record:
		var values []packstream.Value
		if len(argv) > 0 {
			values, _ = argv[0].List()
		}
		if head.cb.onRecord != nil {
			if err := head.cb.onRecord(values); err != nil {
				return p.fail("sync", err)
			}
		}
		return nil

	case message.Success:
		p.popHead()
		p.scratch.Reset()
		var meta packstream.Value
		if len(argv) > 0 {
			meta = argv[0]
		}
		if head.tag == message.AckFailure {
			p.state = stateOk
		}
		if head.cb.onSuccess != nil {
			return head.cb.onSuccess(meta)
		}
		return nil

	case message.Failure:
		p.popHead()
		var meta packstream.Value
		if len(argv) > 0 {
			meta = argv[0]
		}
		if p.state == stateOk {
			p.state = stateFailed
			p.enqueueAckFailure()
		}
		if head.cb.onFailure != nil {
			err := head.cb.onFailure(meta)
			p.scratch.Reset()
			return err
		}
		p.scratch.Reset()
		return nil

	case message.Ignored:
		p.popHead()
		p.scratch.Reset()
		cause := p.ignoredCause()
		if head.cb.onIgnored != nil {
			return head.cb.onIgnored(cause)
		}
		return nil

	default:
		return p.fail("sync", fmt.Errorf("%w: unexpected reply tag %v", message.ErrProtocolViolation, tag))
	}
}

func (p *pipeline) ignoredCause() error {
	if p.resetCause != nil {
		return p.resetCause
	}
	return newError("sync", KindStatementEvaluationFailed, errors.New("request ignored after a prior failure"))
}

func (p *pipeline) popHead() {
	p.queue = p.queue[1:]
}

// enqueueAckFailure inserts the automatic ACK_FAILURE request: it is
// invisible to callers, its Success reply returns the connection to
// Ok, and no other reply is expected until then (every intervening
// reply the server sends is Ignored).
func (p *pipeline) enqueueAckFailure() {
	_ = p.enqueue(message.AckFailure, nil, false, nil, requestCallbacks{})
}

// reset enqueues a RESET request and synchronizes until it completes.
// Every reply for a request enqueued before the reset, observed while
// draining toward it, surfaces as SessionReset through resetCause
// rather than StatementEvaluationFailed.
func (p *pipeline) reset() error {
	if p.state == stateDefunct {
		return p.defunctErr
	}
	p.resetEpoch++
	resetErr := newError("reset", KindSessionReset, errors.New("connection reset"))
	p.resetCause = resetErr
	defer func() { p.resetCause = nil }()

	done := false
	if err := p.enqueue(message.Reset, nil, false, nil, requestCallbacks{
		onSuccess: func(packstream.Value) error { done = true; p.state = stateOk; return nil },
		onFailure: func(packstream.Value) error { done = true; return nil },
	}); err != nil {
		return err
	}
	for !done {
		if err := p.sync(0); err != nil {
			return err
		}
	}
	return nil
}

// fail moves the connection to Defunct and returns a SessionEnded
// error wrapping cause; every later operation short-circuits with the
// same error.
func (p *pipeline) fail(op string, cause error) error {
	p.state = stateDefunct
	p.defunctErr = newError(op, KindSessionEnded, cause)
	return p.defunctErr
}

func (p *pipeline) checkFailureKind() ErrorKind {
	switch p.state {
	case stateDefunct:
		return KindSessionEnded
	case stateFailed:
		return KindStatementEvaluationFailed
	default:
		return KindUnknown
	}
}
