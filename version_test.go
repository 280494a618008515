package gobolt

import "testing"

func TestHandshakeProposalEncodesSupportedVersionsOnly(t *testing.T) {
	got := handshakeProposal()
	want := [16]byte{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if got != want {
		t.Fatalf("handshakeProposal() = % X, want % X", got, want)
	}
}

func TestProtocolVersionEncodeDecodeRoundTrip(t *testing.T) {
	pv := newProtocolVersion(3, 7)
	enc := pv.encode()
	if enc != [4]byte{0, 0, 7, 3} {
		t.Fatalf("encode() = % X, want 00 00 07 03", enc)
	}
	back := decodeProtocolVersion(enc)
	if back.v.Major != 3 || back.v.Minor != 7 {
		t.Fatalf("decodeProtocolVersion round trip = %+v", back.v)
	}
}

func TestProtocolVersionIsNullAndString(t *testing.T) {
	var zero protocolVersion
	if !zero.isNull() {
		t.Fatalf("zero value should be null")
	}
	if zero.String() != "none" {
		t.Fatalf("String() = %q, want \"none\"", zero.String())
	}
	v := newProtocolVersion(1, 0)
	if v.isNull() {
		t.Fatalf("1.0 should not be null")
	}
	if v.String() != "1.0" {
		t.Fatalf("String() = %q, want \"1.0\"", v.String())
	}
}

func TestChooseVersionMatchesSupported(t *testing.T) {
	agreed, ok := chooseVersion(newProtocolVersion(1, 0))
	if !ok {
		t.Fatalf("expected 1.0 to be accepted")
	}
	if agreed.String() != "1.0" {
		t.Fatalf("agreed = %v, want 1.0", agreed)
	}
}

func TestChooseVersionRejectsUnsupported(t *testing.T) {
	if _, ok := chooseVersion(newProtocolVersion(9, 9)); ok {
		t.Fatalf("expected 9.9 to be rejected")
	}
}

func TestChooseVersionRejectsNull(t *testing.T) {
	if _, ok := chooseVersion(protocolVersion{}); ok {
		t.Fatalf("expected the null version to be rejected")
	}
}
