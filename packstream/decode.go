package packstream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cleishm/gobolt/arena"
)

// maxStructFields bounds the field count Deserialize will materialize
// for a single Struct, guarding against a corrupt or hostile extended
// length driving an unbounded allocation before a single field has been
// read.
const maxStructFields = 4096

// maxExtendedLen bounds any single extended (8/16/32-bit) length field
// before the corresponding buffer is allocated, for the same reason.
const maxExtendedLen = 1 << 26 // 64 MiB

// Deserialize reads exactly one Value from source, registering every
// owned allocation (string bytes, list/map/struct backing arrays)
// against pool. The returned Value is valid only while pool is not
// drained/reset.
func Deserialize(source io.Reader, pool *arena.Pool) (Value, error) {
	marker, err := readByte(source)
	if err != nil {
		return Value{}, err
	}
	return deserializeMarked(source, pool, marker)
}

func deserializeMarked(source io.Reader, pool *arena.Pool, marker byte) (Value, error) {
	switch {
	case marker == markerNull:
		return Null(), nil
	case marker == markerTrue:
		return Bool(true), nil
	case marker == markerFalse:
		return Bool(false), nil
	case marker == markerFloat:
		return deserializeFloat(source)
	case marker == markerInt8:
		return deserializeIntN(source, 1)
	case marker == markerInt16:
		return deserializeIntN(source, 2)
	case marker == markerInt32:
		return deserializeIntN(source, 4)
	case marker == markerInt64:
		return deserializeIntN(source, 8)
	case isTinyInt(marker):
		return Int(decodeTinyInt(marker)), nil
	case marker>>4 == markerStringBase>>4:
		return deserializeString(source, pool, int(marker&tinyMaxLen))
	case marker == markerString8:
		return deserializeStringExt(source, pool, 1)
	case marker == markerString16:
		return deserializeStringExt(source, pool, 2)
	case marker == markerString32:
		return deserializeStringExt(source, pool, 4)
	case marker>>4 == markerListBase>>4:
		return deserializeList(source, pool, int(marker&tinyMaxLen))
	case marker == markerList8:
		return deserializeListExt(source, pool, 1)
	case marker == markerList16:
		return deserializeListExt(source, pool, 2)
	case marker == markerList32:
		return deserializeListExt(source, pool, 4)
	case marker>>4 == markerMapBase>>4:
		return deserializeMap(source, pool, int(marker&tinyMaxLen))
	case marker == markerMap8:
		return deserializeMapExt(source, pool, 1)
	case marker == markerMap16:
		return deserializeMapExt(source, pool, 2)
	case marker == markerMap32:
		return deserializeMapExt(source, pool, 4)
	case marker>>4 == markerStructBase>>4:
		return deserializeStruct(source, pool, int(marker&tinyMaxLen))
	case marker == markerStruct8:
		return deserializeStructExt(source, pool, 1)
	case marker == markerStruct16:
		return deserializeStructExt(source, pool, 2)
	default:
		return Value{}, fmt.Errorf("%w: 0x%02X", ErrInvalidValueMarker, marker)
	}
}

func readByte(source io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(source, buf[:]); err != nil {
		return 0, unexpectedEOF(err)
	}
	return buf[0], nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %v", ErrUnexpectedEndOfInput, err)
	}
	return err
}

// readInto reads exactly len(buf) bytes from source into buf.
func readInto(source io.Reader, buf []byte) error {
	if _, err := io.ReadFull(source, buf); err != nil {
		return unexpectedEOF(err)
	}
	return nil
}

func readUintExt(source io.Reader, width int) (uint64, error) {
	var buf [4]byte
	if err := readInto(source, buf[:width]); err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(buf[:2])), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(buf[:4])), nil
	default:
		panic("packstream: unsupported extension width")
	}
}

func deserializeFloat(source io.Reader) (Value, error) {
	var buf [8]byte
	if err := readInto(source, buf[:]); err != nil {
		return Value{}, err
	}
	return Float(math.Float64frombits(binary.BigEndian.Uint64(buf[:]))), nil
}

func deserializeIntN(source io.Reader, width int) (Value, error) {
	var buf [8]byte
	if err := readInto(source, buf[:width]); err != nil {
		return Value{}, err
	}
	switch width {
	case 1:
		return Int(int64(int8(buf[0]))), nil
	case 2:
		return Int(int64(int16(binary.BigEndian.Uint16(buf[:2])))), nil
	case 4:
		return Int(int64(int32(binary.BigEndian.Uint32(buf[:4])))), nil
	default:
		return Int(int64(binary.BigEndian.Uint64(buf[:8]))), nil
	}
}

func deserializeStringExt(source io.Reader, pool *arena.Pool, width int) (Value, error) {
	n, err := readUintExt(source, width)
	if err != nil {
		return Value{}, err
	}
	if n > maxExtendedLen {
		return Value{}, fmt.Errorf("%w: string length %d", ErrUnexpectedEndOfInput, n)
	}
	return deserializeString(source, pool, int(n))
}

func deserializeString(source io.Reader, pool *arena.Pool, n int) (Value, error) {
	if n == 0 {
		return String(""), nil
	}
	buf := pool.Allocate(n)
	if err := readInto(source, buf); err != nil {
		return Value{}, err
	}
	return String(arena.String(buf)), nil
}

func deserializeListExt(source io.Reader, pool *arena.Pool, width int) (Value, error) {
	n, err := readUintExt(source, width)
	if err != nil {
		return Value{}, err
	}
	if n > maxExtendedLen {
		return Value{}, fmt.Errorf("%w: list length %d", ErrUnexpectedEndOfInput, n)
	}
	return deserializeList(source, pool, int(n))
}

func deserializeList(source io.Reader, pool *arena.Pool, n int) (Value, error) {
	items := make([]Value, 0, initialCap(n))
	for i := 0; i < n; i++ {
		v, err := Deserialize(source, pool)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	return List(items), nil
}

func deserializeMapExt(source io.Reader, pool *arena.Pool, width int) (Value, error) {
	n, err := readUintExt(source, width)
	if err != nil {
		return Value{}, err
	}
	if n > maxExtendedLen {
		return Value{}, fmt.Errorf("%w: map length %d", ErrUnexpectedEndOfInput, n)
	}
	return deserializeMap(source, pool, int(n))
}

func deserializeMap(source io.Reader, pool *arena.Pool, n int) (Value, error) {
	entries := make([]MapEntry, 0, initialCap(n))
	for i := 0; i < n; i++ {
		keyMarker, err := readByte(source)
		if err != nil {
			return Value{}, err
		}
		keyVal, err := deserializeKeyString(source, pool, keyMarker)
		if err != nil {
			return Value{}, err
		}
		val, err := Deserialize(source, pool)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, MapEntry{Key: keyVal, Value: val})
	}
	return Map(entries), nil
}

func deserializeKeyString(source io.Reader, pool *arena.Pool, marker byte) (string, error) {
	switch {
	case marker>>4 == markerStringBase>>4:
		v, err := deserializeString(source, pool, int(marker&tinyMaxLen))
		if err != nil {
			return "", err
		}
		s, _ := v.Str()
		return s, nil
	case marker == markerString8:
		v, err := deserializeStringExt(source, pool, 1)
		if err != nil {
			return "", err
		}
		s, _ := v.Str()
		return s, nil
	case marker == markerString16:
		v, err := deserializeStringExt(source, pool, 2)
		if err != nil {
			return "", err
		}
		s, _ := v.Str()
		return s, nil
	case marker == markerString32:
		v, err := deserializeStringExt(source, pool, 4)
		if err != nil {
			return "", err
		}
		s, _ := v.Str()
		return s, nil
	default:
		return "", fmt.Errorf("%w: marker 0x%02X", ErrInvalidMapKeyType, marker)
	}
}

func deserializeStructExt(source io.Reader, pool *arena.Pool, width int) (Value, error) {
	n, err := readUintExt(source, width)
	if err != nil {
		return Value{}, err
	}
	return deserializeStruct(source, pool, int(n))
}

func deserializeStruct(source io.Reader, pool *arena.Pool, n int) (Value, error) {
	if n > maxStructFields {
		return Value{}, fmt.Errorf("%w: %d fields", ErrStructOverflow, n)
	}
	sig, err := readByte(source)
	if err != nil {
		return Value{}, err
	}
	fields := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := Deserialize(source, pool)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, v)
	}
	return Struct(sig, fields), nil
}

func initialCap(n int) int {
	if n > 64 {
		return 64
	}
	return n
}
