package gobolt

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/cleishm/gobolt/internal/message"
	"github.com/cleishm/gobolt/packstream"
)

// DefaultUserAgent is sent in INIT when no WithUserAgent option is
// given.
const DefaultUserAgent = "gobolt/1.0"

// DialOption configures Dial.
type DialOption func(*dialOptions)

type dialOptions struct {
	userAgent string
	user      string
	password  string
	logger    *slog.Logger
	dialer    net.Dialer
}

// WithUserAgent sets the user_agent field of the INIT message.
func WithUserAgent(agent string) DialOption {
	return func(o *dialOptions) { o.userAgent = agent }
}

// WithBasicAuth sets the basic-auth credentials offered in INIT's
// auth map.
func WithBasicAuth(user, password string) DialOption {
	return func(o *dialOptions) { o.user = user; o.password = password }
}

// WithLogger sets the *slog.Logger connection log lines are written
// to; a correlation ID is appended automatically (see logging.go).
func WithLogger(l *slog.Logger) DialOption {
	return func(o *dialOptions) { o.logger = l }
}

// Dial resolves target, establishes a byte transport, performs the
// protocol handshake, and sends INIT, returning a Ready connection.
func Dial(ctx context.Context, target *Target, opts ...DialOption) (*Connection, error) {
	o := dialOptions{userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(&o)
	}
	if target.User != "" && o.user == "" {
		o.user = target.User
		o.password = target.Password
	}

	conn, err := o.dialer.DialContext(ctx, "tcp", target.Addr())
	if err != nil {
		return nil, newError("Dial", kindForDialError(err), err)
	}

	connID, err := newConnID()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger := connLogger(o.logger, connID)

	c := &Connection{
		transport: conn,
		connID:    connID,
		log:       logger,
		userAgent: o.userAgent,
	}

	version, err := handshake(conn)
	if err != nil {
		_ = conn.Close()
		return nil, newConnError("Dial", KindProtocolNegotiationFailed, connID, err)
	}
	c.version = version
	logger.Debug("handshake complete", slog.String("version", version.String()))

	w, r := newChunkedStreams(conn)
	c.pipe = newPipeline(w, r)

	if err := c.init(o.user, o.password); err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger.Debug("session ready")
	return c, nil
}

// handshake sends the four candidate versions and reads the server's
// selection.
func handshake(rw net.Conn) (protocolVersion, error) {
	proposal := handshakeProposal()
	if _, err := rw.Write(proposal[:]); err != nil {
		return protocolVersion{}, err
	}
	var reply [4]byte
	if _, err := readFull(rw, reply[:]); err != nil {
		return protocolVersion{}, err
	}
	chosen := decodeProtocolVersion(reply)
	if chosen.isNull() {
		return protocolVersion{}, fmt.Errorf("server rejected every candidate version")
	}
	agreed, ok := chooseVersion(chosen)
	if !ok {
		return protocolVersion{}, fmt.Errorf("server selected unsupported version %s", chosen)
	}
	return agreed, nil
}

func readFull(r net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// init sends INIT(user_agent, auth) and blocks until its reply: a
// Success transitions the connection to Ready, a Failure is reported
// as InvalidCredentials.
func (c *Connection) init(user, password string) error {
	auth := []packstream.MapEntry{
		{Key: "scheme", Value: packstream.String("basic")},
		{Key: "principal", Value: packstream.String(user)},
		{Key: "credentials", Value: packstream.String(password)},
	}
	argv := []packstream.Value{packstream.String(c.userAgent), packstream.Map(auth)}

	var initErr error
	done := false
	cb := requestCallbacks{
		onSuccess: func(packstream.Value) error { done = true; return nil },
		onFailure: func(meta packstream.Value) error {
			done = true
			code, _ := meta.MapGet("code")
			msg, _ := meta.MapGet("message")
			codeStr, _ := code.Str()
			msgStr, _ := msg.Str()
			initErr = &Error{Op: "Init", Kind: KindInvalidCredentials, ConnID: c.connID, Code: codeStr, Message: msgStr}
			return nil
		},
	}
	if err := c.pipe.enqueue(message.Init, argv, false, nil, cb); err != nil {
		return err
	}
	for !done {
		if err := c.pipe.sync(len(c.pipe.queue) - 1); err != nil {
			return err
		}
	}
	return initErr
}

func kindForDialError(err error) ErrorKind {
	var netErr *net.OpError
	if ok := asOpError(err, &netErr); ok {
		if netErr.Op == "dial" {
			return KindConnectionRefused
		}
	}
	return KindIoError
}

func asOpError(err error, target **net.OpError) bool {
	op, ok := err.(*net.OpError)
	if !ok {
		return false
	}
	*target = op
	return true
}
