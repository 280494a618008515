package packstream

// Marker bytes for the packed-binary encoding. A leading
// marker byte selects the variant and, for variable-length variants,
// either an inline small length (low nibble/bits) or one of the 8/16/32
// bit length-extension markers below.
const (
	markerNull  = 0xC0
	markerFloat = 0xC1
	markerFalse = 0xC2
	markerTrue  = 0xC3

	markerInt8  = 0xC8
	markerInt16 = 0xC9
	markerInt32 = 0xCA
	markerInt64 = 0xCB

	// Tiny-int range: any byte in [0x00,0x7F] or [0xF0,0xFF] IS the
	// value, sign-extended from its low nibble when >= 0xF0.
	tinyIntPositiveMax = 0x7F
	tinyIntNegativeMin = 0xF0

	markerStringBase = 0x80
	markerString8     = 0xD0
	markerString16    = 0xD1
	markerString32    = 0xD2

	markerListBase = 0x90
	markerList8    = 0xD4
	markerList16   = 0xD5
	markerList32   = 0xD6

	markerMapBase = 0xA0
	markerMap8    = 0xD8
	markerMap16   = 0xD9
	markerMap32   = 0xDA

	markerStructBase = 0xB0
	markerStruct8    = 0xDC
	markerStruct16   = 0xDD

	tinyMaxLen = 0x0F // inline marker forms hold lengths 0..15
)

// isTinyInt reports whether marker, read as a raw byte with no
// extension, directly encodes an Int in [-16, 127].
func isTinyInt(marker byte) bool {
	return marker <= tinyIntPositiveMax || marker >= tinyIntNegativeMin
}

// decodeTinyInt sign-extends a tiny-int marker byte to int64.
func decodeTinyInt(marker byte) int64 {
	return int64(int8(marker))
}
