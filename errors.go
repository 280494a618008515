package gobolt

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy of error kinds this library produces
//. It is not an error itself; wrap it in an *Error to return
// one.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota

	// Protocol kinds.
	KindProtocolNegotiationFailed
	KindProtocolViolation
	KindInvalidValueMarker
	KindUnexpectedEndOfInput
	KindInvalidMapKeyType

	// Session kinds.
	KindSessionEnded
	KindSessionReset
	KindSessionBusy
	KindInvalidCredentials
	KindCredentialsExpired
	KindStatementEvaluationFailed

	// Transport kinds.
	KindIoError
	KindNoServerTlsSupport
	KindTlsVerificationFailed
	KindUnknownHost
	KindConnectionRefused

	// Result-stream kinds.
	KindNoPlanAvailable
	KindNoResultsAvailable

	// Usage kinds.
	KindInvalidArgument
	KindOutOfRange
	KindNotSupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindProtocolNegotiationFailed:
		return "ProtocolNegotiationFailed"
	case KindProtocolViolation:
		return "ProtocolViolation"
	case KindInvalidValueMarker:
		return "InvalidValueMarker"
	case KindUnexpectedEndOfInput:
		return "UnexpectedEndOfInput"
	case KindInvalidMapKeyType:
		return "InvalidMapKeyType"
	case KindSessionEnded:
		return "SessionEnded"
	case KindSessionReset:
		return "SessionReset"
	case KindSessionBusy:
		return "SessionBusy"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindCredentialsExpired:
		return "CredentialsExpired"
	case KindStatementEvaluationFailed:
		return "StatementEvaluationFailed"
	case KindIoError:
		return "IoError"
	case KindNoServerTlsSupport:
		return "NoServerTlsSupport"
	case KindTlsVerificationFailed:
		return "TlsVerificationFailed"
	case KindUnknownHost:
		return "UnknownHost"
	case KindConnectionRefused:
		return "ConnectionRefused"
	case KindNoPlanAvailable:
		return "NoPlanAvailable"
	case KindNoResultsAvailable:
		return "NoResultsAvailable"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindOutOfRange:
		return "OutOfRange"
	case KindNotSupported:
		return "NotSupported"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every operation in this package.
// It carries the error-kind taxonomy, the name of the
// operation that failed, an optional per-connection correlation ID, and
// the underlying cause (a wire-level packstream/chunking/message error,
// a transport error, or a server-reported FAILURE detail).
type Error struct {
	Kind   ErrorKind
	Op     string
	ConnID string
	Err    error

	// Code and Message carry the server's reported FAILURE detail
	// ("code" and "message" in its meta Map) when the error stems from
	// a FAILURE reply (StatementEvaluationFailed for a statement,
	// InvalidCredentials for INIT); otherwise both are empty.
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		if e.ConnID != "" {
			return fmt.Sprintf("gobolt: %s: %s: %s (%s)", e.Op, e.Kind, e.Message, e.ConnID)
		}
		return fmt.Sprintf("gobolt: %s: %s: %s", e.Op, e.Kind, e.Message)
	}
	if e.Err != nil {
		if e.ConnID != "" {
			return fmt.Sprintf("gobolt: %s: %s: %v (%s)", e.Op, e.Kind, e.Err, e.ConnID)
		}
		return fmt.Sprintf("gobolt: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gobolt: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, &gobolt.Error{Kind: gobolt.KindSessionEnded}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(op string, kind ErrorKind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

func newConnError(op string, kind ErrorKind, connID string, cause error) *Error {
	return &Error{Op: op, Kind: kind, ConnID: connID, Err: cause}
}

// KindOf reports the ErrorKind of err if it is (or wraps) an *Error,
// and KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is (or wraps) an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	return KindOf(err) == k
}
