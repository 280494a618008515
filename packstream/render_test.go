package packstream_test

import (
	"testing"

	"github.com/cleishm/gobolt/packstream"
)

func TestToStringScalars(t *testing.T) {
	cases := []struct {
		v    packstream.Value
		want string
	}{
		{packstream.Null(), "null"},
		{packstream.Bool(true), "true"},
		{packstream.Bool(false), "false"},
		{packstream.Int(42), "42"},
		{packstream.String("hi"), `"hi"`},
		{packstream.String(`a"b\c`), `"a\"b\\c"`},
	}
	for _, c := range cases {
		if got := packstream.ToString(c.v); got != c.want {
			t.Errorf("ToString(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestToStringCollections(t *testing.T) {
	list := packstream.List([]packstream.Value{packstream.Int(1), packstream.Int(2)})
	if got, want := packstream.ToString(list), "[1, 2]"; got != want {
		t.Errorf("ToString(list) = %q, want %q", got, want)
	}

	m := packstream.Map([]packstream.MapEntry{{Key: "a", Value: packstream.Int(1)}})
	if got, want := packstream.ToString(m), `{"a": 1}`; got != want {
		t.Errorf("ToString(map) = %q, want %q", got, want)
	}
}

func TestToStringNodeSyntax(t *testing.T) {
	node := packstream.Struct(0x4E, []packstream.Value{
		packstream.Int(1),
		packstream.List([]packstream.Value{packstream.String("Person")}),
		packstream.Map([]packstream.MapEntry{{Key: "name", Value: packstream.String("Alice")}}),
	})
	want := `(:Person {name: "Alice"})`
	if got := packstream.ToString(node); got != want {
		t.Errorf("ToString(node) = %q, want %q", got, want)
	}
}

func TestToStringRelationshipSyntax(t *testing.T) {
	rel := packstream.Struct(0x52, []packstream.Value{
		packstream.Int(1), packstream.Int(2), packstream.Int(3),
		packstream.String("KNOWS"),
		packstream.Map([]packstream.MapEntry{{Key: "since", Value: packstream.Int(2020)}}),
	})
	want := `[:KNOWS {since: 2020}]`
	if got := packstream.ToString(rel); got != want {
		t.Errorf("ToString(rel) = %q, want %q", got, want)
	}
}

func TestRenderTruncatesAndNulTerminates(t *testing.T) {
	v := packstream.String("hello world")
	buf := make([]byte, 6)
	n := packstream.Render(v, buf)
	if n != len(packstream.ToString(v)) {
		t.Fatalf("Render returned %d, want full required length %d", n, len(packstream.ToString(v)))
	}
	if buf[len(buf)-1] != 0 {
		t.Fatalf("Render did not NUL-terminate a full buffer")
	}
	if string(buf[:5]) != `"hell` {
		t.Fatalf("Render truncated content = %q", buf[:5])
	}
}

func TestRenderEmptyBuffer(t *testing.T) {
	n := packstream.Render(packstream.Int(7), nil)
	if n != 1 {
		t.Fatalf("Render(nil buf) = %d, want 1", n)
	}
}
