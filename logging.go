package gobolt

import (
	"log/slog"

	uuid "github.com/satori/go.uuid"
)

// newConnID derives a short correlation ID for a connection's log
// lines and error values. A full UUID is overkill to print on every
// line, so only its first 8 hex characters are kept; collisions in
// that truncated space only ever affect readability of concurrent
// logs, never correctness.
func newConnID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", newError("newConnID", KindIoError, err)
	}
	return id.String()[:8], nil
}

// connLogger returns a logger that tags every record with the
// connection's correlation ID, so interleaved log lines from several
// concurrently dialed connections can be told apart.
func connLogger(base *slog.Logger, connID string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With(slog.String("conn", connID))
}
