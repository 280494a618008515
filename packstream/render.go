package packstream

import (
	"strconv"
	"strings"
)

// ToString produces a human-readable rendering of v: null, true/false,
// base-10 integers, floats, quoted/escaped strings, nested lists and
// maps, and node/relationship syntax for Struct values whose signature
// matches the well-known Node ('N') / Relationship ('R') convention.
// Any other Struct signature renders as a generic
// struct(sig, field, field, ...) form.
//
// ToString always returns the full rendering; Render additionally
// writes it into a caller-supplied buffer, truncating to n bytes and
// guaranteeing a trailing NUL when n > 0, matching a C-oriented
// to_string(v, buf, n) contract.
func ToString(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

// Render writes ToString(v) into buf, truncating to len(buf)-1 bytes (to
// leave room for a trailing NUL, matching the fixed-buffer contract of
// the original to_string(v, buf, n)) and returns the number of bytes
// that would have been required for the untruncated rendering (not
// counting the NUL), as the original contract does.
func Render(v Value, buf []byte) int {
	s := ToString(v)
	if len(buf) == 0 {
		return len(s)
	}
	n := copy(buf[:len(buf)-1], s)
	buf[n] = 0
	return len(s)
}

func writeValue(b *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		writeQuotedString(b, v.s)
	case KindList:
		b.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, it)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, e := range v.m {
			if i > 0 {
				b.WriteString(", ")
			}
			writeQuotedString(b, e.Key)
			b.WriteString(": ")
			writeValue(b, e.Value)
		}
		b.WriteByte('}')
	case KindStruct:
		writeStruct(b, v)
	default:
		b.WriteString("?")
	}
}

// Struct signatures given node/relationship-style rendering. These are
// the well-known Bolt struct tags; packstream only needs them
// for cosmetic rendering, so they are not exported as named constants
// here (gobolt's record.go defines its own unexported copies).
const (
	renderSigNode         = 0x4E // 'N'
	renderSigRelationship = 0x52 // 'R'
)

func writeStruct(b *strings.Builder, v Value) {
	switch v.sig {
	case renderSigNode:
		writeNodeSyntax(b, v.items)
		return
	case renderSigRelationship:
		writeRelationshipSyntax(b, v.items)
		return
	}
	b.WriteString("struct(")
	b.WriteString(strconv.Itoa(int(v.sig)))
	for _, f := range v.items {
		b.WriteString(", ")
		writeValue(b, f)
	}
	b.WriteByte(')')
}

// writeNodeSyntax renders (id:Int, labels:List<String>, props:Map) as
// `(:Label1:Label2 {k: v, ...})`.
func writeNodeSyntax(b *strings.Builder, fields []Value) {
	b.WriteByte('(')
	if len(fields) >= 2 {
		if labels, ok := fields[1].List(); ok {
			for _, l := range labels {
				if s, ok := l.Str(); ok {
					b.WriteByte(':')
					b.WriteString(s)
				}
			}
		}
	}
	if len(fields) >= 3 {
		if len(fields) >= 2 {
			if labels, ok := fields[1].List(); ok && len(labels) > 0 {
				b.WriteByte(' ')
			}
		}
		writePropsMap(b, fields[2])
	}
	b.WriteByte(')')
}

// writeRelationshipSyntax renders
// (id:Int, start:Int, end:Int, type:String, props:Map) as
// `[:TYPE {k: v, ...}]`.
func writeRelationshipSyntax(b *strings.Builder, fields []Value) {
	b.WriteByte('[')
	if len(fields) >= 4 {
		if t, ok := fields[3].Str(); ok {
			b.WriteByte(':')
			b.WriteString(t)
		}
	}
	if len(fields) >= 5 {
		b.WriteByte(' ')
		writePropsMap(b, fields[4])
	}
	b.WriteByte(']')
}

// writePropsMap renders a node/relationship properties map with bare
// (unquoted) keys, e.g. `{k: v, ...}`, matching the node/relationship
// grammar rather than the generic quoted-key Map rendering.
func writePropsMap(b *strings.Builder, v Value) {
	if v.kind != KindMap {
		writeValue(b, v)
		return
	}
	b.WriteByte('{')
	for i, e := range v.m {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Key)
		b.WriteString(": ")
		writeValue(b, e.Value)
	}
	b.WriteByte('}')
}

func writeQuotedString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
