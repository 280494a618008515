package gobolt

import (
	"fmt"

	"github.com/blang/semver"
)

// protocolVersion is one of the four 4-byte candidates a client offers
// during the handshake. The wire encoding is
// 0x00, 0x00, Minor, Major (big-endian 4-byte words with the patch
// component left zero) per the handshake's proposal format.
type protocolVersion struct {
	v semver.Version
}

func newProtocolVersion(major, minor uint64) protocolVersion {
	return protocolVersion{v: semver.Version{Major: major, Minor: minor}}
}

// supportedVersions lists the candidates offered during handshake, in
// preference order. Per the Open Question resolution in DESIGN.md this
// implementation proposes a single version and fills the remaining
// three handshake slots with the null version, rather than negotiating
// among several.
var supportedVersions = []protocolVersion{
	newProtocolVersion(1, 0),
}

func (pv protocolVersion) isNull() bool {
	return pv.v.Major == 0 && pv.v.Minor == 0
}

func (pv protocolVersion) String() string {
	if pv.isNull() {
		return "none"
	}
	return fmt.Sprintf("%d.%d", pv.v.Major, pv.v.Minor)
}

func (pv protocolVersion) encode() [4]byte {
	return [4]byte{0, 0, byte(pv.v.Minor), byte(pv.v.Major)}
}

func decodeProtocolVersion(b [4]byte) protocolVersion {
	return protocolVersion{v: semver.Version{Major: uint64(b[3]), Minor: uint64(b[2])}}
}

// chooseVersion reports whether the server's chosen version (decoded
// from its handshake reply) matches one this client proposed.
func chooseVersion(chosen protocolVersion) (protocolVersion, bool) {
	if chosen.isNull() {
		return protocolVersion{}, false
	}
	for _, candidate := range supportedVersions {
		if candidate.v.Major == chosen.v.Major && candidate.v.Minor == chosen.v.Minor {
			return candidate, true
		}
	}
	return protocolVersion{}, false
}

// handshakeProposal builds the 16-byte handshake message: four 4-byte
// candidate versions, padding any unused slots with the null version.
func handshakeProposal() [16]byte {
	var out [16]byte
	for i := range 4 {
		var pv protocolVersion
		if i < len(supportedVersions) {
			pv = supportedVersions[i]
		}
		enc := pv.encode()
		copy(out[i*4:i*4+4], enc[:])
	}
	return out
}
