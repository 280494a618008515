package packstream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Serialize writes v to sink using the minimal-width encoding for its
// variant. Map and Struct fields are written in the order given by the
// caller. A short
// write from sink is reported as ErrIoError. Serialize never reports
// ErrInvalidMapKeyType: MapEntry.Key is a Go string, so every Map key
// is written as a String.
func Serialize(v Value, sink io.Writer) error {
	switch v.kind {
	case KindNull:
		return writeRaw(sink, markerNull)
	case KindBool:
		if v.b {
			return writeRaw(sink, markerTrue)
		}
		return writeRaw(sink, markerFalse)
	case KindInt:
		return serializeInt(sink, v.i)
	case KindFloat:
		return serializeFloat(sink, v.f)
	case KindString:
		return serializeString(sink, v.s)
	case KindList:
		return serializeList(sink, v.items)
	case KindMap:
		return serializeMap(sink, v.m)
	case KindStruct:
		return serializeStruct(sink, v.sig, v.items)
	default:
		return fmt.Errorf("packstream: cannot serialize %v", v.kind)
	}
}

func writeRaw(sink io.Writer, bs ...byte) error {
	n, err := sink.Write(bs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoError, err)
	}
	if n != len(bs) {
		return fmt.Errorf("%w: short write", ErrIoError)
	}
	return nil
}

func serializeInt(sink io.Writer, n int64) error {
	if n >= -16 && n <= tinyIntPositiveMax {
		return writeRaw(sink, byte(int8(n)))
	}
	if n >= math.MinInt8 && n <= math.MaxInt8 {
		return writeRaw(sink, markerInt8, byte(int8(n)))
	}
	if n >= math.MinInt16 && n <= math.MaxInt16 {
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], uint16(int16(n)))
		return writeRaw(sink, append([]byte{markerInt16}, buf[:]...)...)
	}
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(int32(n)))
		return writeRaw(sink, append([]byte{markerInt32}, buf[:]...)...)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	return writeRaw(sink, append([]byte{markerInt64}, buf[:]...)...)
}

func serializeFloat(sink io.Writer, f float64) error {
	var buf [9]byte
	buf[0] = markerFloat
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(f))
	return writeRaw(sink, buf[:]...)
}

func serializeLengthPrefixed(sink io.Writer, base byte, ext8, ext16, ext32 byte, n int) error {
	switch {
	case n <= tinyMaxLen:
		return writeRaw(sink, base+byte(n))
	case n <= 0xFF:
		return writeRaw(sink, ext8, byte(n))
	case n <= 0xFFFF:
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], uint16(n))
		return writeRaw(sink, append([]byte{ext16}, buf[:]...)...)
	default:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(n))
		return writeRaw(sink, append([]byte{ext32}, buf[:]...)...)
	}
}

func serializeString(sink io.Writer, s string) error {
	if err := serializeLengthPrefixed(sink, markerStringBase, markerString8, markerString16, markerString32, len(s)); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	return writeRaw(sink, []byte(s)...)
}

func serializeList(sink io.Writer, items []Value) error {
	if err := serializeLengthPrefixed(sink, markerListBase, markerList8, markerList16, markerList32, len(items)); err != nil {
		return err
	}
	for _, it := range items {
		if err := Serialize(it, sink); err != nil {
			return err
		}
	}
	return nil
}

func serializeMap(sink io.Writer, entries []MapEntry) error {
	if err := serializeLengthPrefixed(sink, markerMapBase, markerMap8, markerMap16, markerMap32, len(entries)); err != nil {
		return err
	}
	for _, e := range entries {
		if err := serializeString(sink, e.Key); err != nil {
			return err
		}
		if err := Serialize(e.Value, sink); err != nil {
			return err
		}
	}
	return nil
}

func serializeStruct(sink io.Writer, sig uint8, fields []Value) error {
	n := len(fields)
	switch {
	case n <= tinyMaxLen:
		if err := writeRaw(sink, markerStructBase+byte(n)); err != nil {
			return err
		}
	case n <= 0xFF:
		if err := writeRaw(sink, markerStruct8, byte(n)); err != nil {
			return err
		}
	default:
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], uint16(n))
		if err := writeRaw(sink, append([]byte{markerStruct16}, buf[:]...)...); err != nil {
			return err
		}
	}
	if err := writeRaw(sink, sig); err != nil {
		return err
	}
	for _, f := range fields {
		if err := Serialize(f, sink); err != nil {
			return err
		}
	}
	return nil
}
