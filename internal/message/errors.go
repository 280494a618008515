package message

import "errors"

// ErrProtocolViolation reports a top-level value that was not a Struct,
// or trailing bytes found after a Struct's fields but before the
// message's end.
var ErrProtocolViolation = errors.New("message: protocol violation")
