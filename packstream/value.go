// Package packstream implements the self-describing, packed-binary value
// encoding carried by the chunked message protocol: a tagged union type
// (Value), its serialization/deserialization to a byte stream, and a
// human-readable renderer.
//
// Values are non-owning: their variable-length payloads (string bytes,
// list items, map entries, struct fields) live in an arena.Pool supplied
// by the caller. A Value is valid only as long as the pool that produced
// it has not been drained or reset.
package packstream

import "fmt"

// Kind identifies a Value's variant.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindStruct:
		return "Struct"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// MapEntry is one (key, value) pair of a Map. Map values preserve the
// order entries were given/read in; keys must be unique within a Map.
type MapEntry struct {
	Key   string
	Value Value
}

// Value is a tagged union over its variants: Null, Bool, Int,
// Float, String, List, Map, and Struct (of which Node, Relationship, and
// Path are specializations distinguished by their struct signature byte,
// see the gobolt package).
//
// The zero Value is Null.
type Value struct {
	kind Kind

	b bool
	i int64
	f float64
	s string

	// items holds List elements or, when kind == KindStruct, the
	// struct's ordered fields.
	items []Value
	m     []MapEntry

	sig uint8 // valid only when kind == KindStruct
}

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an Int value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a Float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a String value. s is stored by reference, not copied;
// callers passing pool-backed strings (see arena.String) get a
// zero-copy Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a List value over items, stored by reference.
func List(items []Value) Value { return Value{kind: KindList, items: items} }

// Map returns a Map value over entries, stored by reference in the
// order given. Serialize writes entries in exactly this order.
func Map(entries []MapEntry) Value { return Value{kind: KindMap, m: entries} }

// Struct returns a Struct value with the given 8-bit signature and
// ordered fields.
func Struct(sig uint8, fields []Value) Value {
	return Value{kind: KindStruct, sig: sig, items: fields}
}

// Kind reports v's variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns v's boolean payload. ok is false if v is not a Bool.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Int returns v's integer payload. ok is false if v is not an Int.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Float returns v's float payload. ok is false if v is not a Float.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// Str returns v's string payload. ok is false if v is not a String.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// List returns v's elements. ok is false if v is not a List.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.items, true
}

// MapEntries returns v's entries in encoded order. ok is false if v is
// not a Map.
func (v Value) MapEntries() ([]MapEntry, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// MapGet looks up key in a Map value by linear scan (maps are small and
// order-sensitive by contract, so no hash index is maintained). ok is
// false if v is not a Map or key is absent.
func (v Value) MapGet(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	for _, e := range v.m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// StructSig returns v's struct signature byte. ok is false if v is not
// a Struct.
func (v Value) StructSig() (uint8, bool) {
	if v.kind != KindStruct {
		return 0, false
	}
	return v.sig, true
}

// StructFields returns v's struct fields in order. ok is false if v is
// not a Struct.
func (v Value) StructFields() ([]Value, bool) {
	if v.kind != KindStruct {
		return nil, false
	}
	return v.items, true
}

// Equal reports whether a and b are structurally equal: same Kind and
// same payload, recursively for List/Map/Struct. Map comparison is
// order-sensitive, matching the serialization invariant that map key
// order is caller-determined and preserved.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindList:
		return equalValueSlices(a.items, b.items)
	case KindMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for i := range a.m {
			if a.m[i].Key != b.m[i].Key || !Equal(a.m[i].Value, b.m[i].Value) {
				return false
			}
		}
		return true
	case KindStruct:
		return a.sig == b.sig && equalValueSlices(a.items, b.items)
	default:
		return false
	}
}

func equalValueSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
