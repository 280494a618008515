package gobolt

import "github.com/cleishm/gobolt/packstream"

// Struct signature bytes for the Node/Relationship/Path value
// specializations.
const (
	sigNode         uint8 = 0x4E
	sigRelationship uint8 = 0x52
	sigPath         uint8 = 0x50
)

// Record is one row delivered by a ResultStream: the ordered field
// values of a single RECORD message, together with the field names
// captured from the owning RUN's Success reply.
//
// A Record's values are valid only while the ResultStream's pool that
// produced them has not been drained; Retain/Release (see
// ResultStream) extend that lifetime past the stream's own progress.
type Record struct {
	fields []string
	values []packstream.Value
	refs   int
}

// NFields reports the number of values in the record.
func (rec *Record) NFields() int { return len(rec.values) }

// FieldName returns the name of the i'th field, as captured from RUN's
// success meta.
func (rec *Record) FieldName(i int) (string, bool) {
	if i < 0 || i >= len(rec.fields) {
		return "", false
	}
	return rec.fields[i], true
}

// Value returns the i'th value of the record.
func (rec *Record) Value(i int) (packstream.Value, bool) {
	if i < 0 || i >= len(rec.values) {
		return packstream.Value{}, false
	}
	return rec.values[i], true
}

// ValueByName returns the value of the field named name.
func (rec *Record) ValueByName(name string) (packstream.Value, bool) {
	for i, f := range rec.fields {
		if f == name {
			return rec.values[i], true
		}
	}
	return packstream.Value{}, false
}

// Node extracts the Node specialization (id, labels, props) from a
// Struct value with signature sigNode.
type Node struct {
	ID     int64
	Labels []string
	Props  packstream.Value
}

// AsNode decodes v as a Node, reporting false if v is not a Node
// struct.
func AsNode(v packstream.Value) (Node, bool) {
	sig, ok := v.StructSig()
	if !ok || sig != sigNode {
		return Node{}, false
	}
	fields, _ := v.StructFields()
	if len(fields) != 3 {
		return Node{}, false
	}
	id, _ := fields[0].Int()
	labelVals, _ := fields[1].List()
	labels := make([]string, 0, len(labelVals))
	for _, lv := range labelVals {
		if s, ok := lv.Str(); ok {
			labels = append(labels, s)
		}
	}
	return Node{ID: id, Labels: labels, Props: fields[2]}, true
}

// Relationship extracts the Relationship specialization (id, start,
// end, type, props) from a Struct value with signature
// sigRelationship.
type Relationship struct {
	ID    int64
	Start int64
	End   int64
	Type  string
	Props packstream.Value
}

// AsRelationship decodes v as a Relationship, reporting false if v is
// not a Relationship struct.
func AsRelationship(v packstream.Value) (Relationship, bool) {
	sig, ok := v.StructSig()
	if !ok || sig != sigRelationship {
		return Relationship{}, false
	}
	fields, _ := v.StructFields()
	if len(fields) != 5 {
		return Relationship{}, false
	}
	id, _ := fields[0].Int()
	start, _ := fields[1].Int()
	end, _ := fields[2].Int()
	typ, _ := fields[3].Str()
	return Relationship{ID: id, Start: start, End: end, Type: typ, Props: fields[4]}, true
}

// Path extracts the Path specialization (nodes, relationships,
// sequence) from a Struct value with signature sigPath.
type Path struct {
	Nodes         []Node
	Relationships []Relationship
	Sequence      []int64
}

// AsPath decodes v as a Path, reporting false if v is not a Path
// struct.
func AsPath(v packstream.Value) (Path, bool) {
	sig, ok := v.StructSig()
	if !ok || sig != sigPath {
		return Path{}, false
	}
	fields, _ := v.StructFields()
	if len(fields) != 3 {
		return Path{}, false
	}
	nodeVals, _ := fields[0].List()
	relVals, _ := fields[1].List()
	seqVals, _ := fields[2].List()

	nodes := make([]Node, 0, len(nodeVals))
	for _, nv := range nodeVals {
		if n, ok := AsNode(nv); ok {
			nodes = append(nodes, n)
		}
	}
	rels := make([]Relationship, 0, len(relVals))
	for _, rv := range relVals {
		if r, ok := AsRelationship(rv); ok {
			rels = append(rels, r)
		}
	}
	seq := make([]int64, 0, len(seqVals))
	for _, sv := range seqVals {
		if n, ok := sv.Int(); ok {
			seq = append(seq, n)
		}
	}
	return Path{Nodes: nodes, Relationships: rels, Sequence: seq}, true
}
