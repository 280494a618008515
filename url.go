package gobolt

import (
	"fmt"
	"net/url"
	"strconv"
)

// defaultPort is used when a connect URL omits an explicit port.
const defaultPort = 7687

// Target is a parsed connect URL: the resolved host:port to dial, the
// credentials to offer during INIT, and whether the transport should
// be wrapped in TLS.
type Target struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
}

// Addr returns the "host:port" string suitable for net.Dial.
func (t *Target) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// ParseURL parses a connect URL of the form
// "scheme://[user[:pass]@]host[:port]". The scheme
// selects secure vs. insecure transport: any scheme ending in "+s" or
// equal to "bolts" requests TLS; all others are plain. The port
// defaults to 7687 when omitted.
func ParseURL(raw string) (*Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, newError("ParseURL", KindInvalidArgument, err)
	}
	if u.Host == "" {
		return nil, newError("ParseURL", KindInvalidArgument, fmt.Errorf("missing host in %q", raw))
	}

	t := &Target{
		Host:   u.Hostname(),
		Port:   defaultPort,
		Secure: isSecureScheme(u.Scheme),
	}
	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, newError("ParseURL", KindInvalidArgument, fmt.Errorf("invalid port %q: %w", portStr, err))
		}
		t.Port = port
	}
	if u.User != nil {
		t.User = u.User.Username()
		t.Password, _ = u.User.Password()
	}
	return t, nil
}

func isSecureScheme(scheme string) bool {
	return scheme == "bolts" || (len(scheme) > 2 && scheme[len(scheme)-2:] == "+s")
}
