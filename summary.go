package gobolt

import (
	"github.com/mitchellh/mapstructure"

	"github.com/cleishm/gobolt/packstream"
)

// Counters holds the per-statement update counts reported in a RUN's
// terminal Success meta ("stats").
type Counters struct {
	NodesCreated         int64 `mapstructure:"nodes-created"`
	NodesDeleted         int64 `mapstructure:"nodes-deleted"`
	RelationshipsCreated int64 `mapstructure:"relationships-created"`
	RelationshipsDeleted int64 `mapstructure:"relationships-deleted"`
	PropertiesSet        int64 `mapstructure:"properties-set"`
	LabelsAdded          int64 `mapstructure:"labels-added"`
	LabelsRemoved        int64 `mapstructure:"labels-removed"`
	IndexesAdded         int64 `mapstructure:"indexes-added"`
	IndexesRemoved       int64 `mapstructure:"indexes-removed"`
	ConstraintsAdded     int64 `mapstructure:"constraints-added"`
	ConstraintsRemoved   int64 `mapstructure:"constraints-removed"`
}

// Plan is one node of the (acyclic) execution-plan tree reported under
// "plan"/"profile" in a RUN's terminal Success meta.
type Plan struct {
	OperatorType string                 `mapstructure:"operatorType"`
	Identifiers  []string               `mapstructure:"identifiers"`
	Args         map[string]interface{} `mapstructure:"args"`
	Children     []Plan                 `mapstructure:"children"`
	Rows         int64                  `mapstructure:"rows"`
	DBHits       int64                  `mapstructure:"dbHits"`
}

// Summary is the decoded terminal Success meta of a RUN: statement
// type, update counters, and an optional plan or profile.
type Summary struct {
	Type     string `mapstructure:"type"`
	Counters Counters
	Plan     *Plan
	Profile  *Plan
}

// decodeSummary decodes a Success meta Map value into a Summary using
// mapstructure, by first flattening the packstream Value into plain
// Go maps/slices/scalars.
func decodeSummary(meta packstream.Value) (*Summary, error) {
	raw, ok := valueToGo(meta).(map[string]interface{})
	if !ok {
		raw = map[string]interface{}{}
	}

	s := &Summary{}
	if typ, ok := raw["type"].(string); ok {
		s.Type = typ
	}
	if stats, ok := raw["stats"]; ok {
		if err := mapstructure.Decode(stats, &s.Counters); err != nil {
			return nil, newError("decodeSummary", KindProtocolViolation, err)
		}
	}
	if plan, ok := raw["plan"]; ok {
		var p Plan
		if err := mapstructure.Decode(plan, &p); err != nil {
			return nil, newError("decodeSummary", KindProtocolViolation, err)
		}
		s.Plan = &p
	}
	if profile, ok := raw["profile"]; ok {
		var p Plan
		if err := mapstructure.Decode(profile, &p); err != nil {
			return nil, newError("decodeSummary", KindProtocolViolation, err)
		}
		s.Profile = &p
	}
	return s, nil
}

// PlanOrError returns the execution plan captured from the RUN meta
// ("plan"), or KindNoPlanAvailable if none was reported
// (e.g. the statement was a PROFILE, whose plan is returned via
// Profile instead, or no plan was requested at all).
func (s *Summary) PlanOrError() (*Plan, error) {
	if s.Plan == nil {
		return nil, newError("Summary.Plan", KindNoPlanAvailable, nil)
	}
	return s.Plan, nil
}

// valueToGo flattens a packstream.Value into plain Go interface{}
// shapes (map[string]interface{}, []interface{}, string, int64,
// float64, bool, nil) so it can feed mapstructure.Decode. Struct
// values (Node/Relationship/Path) are left as packstream.Value since
// summaries never carry them.
func valueToGo(v packstream.Value) interface{} {
	switch v.Kind() {
	case packstream.KindNull:
		return nil
	case packstream.KindBool:
		b, _ := v.Bool()
		return b
	case packstream.KindInt:
		n, _ := v.Int()
		return n
	case packstream.KindFloat:
		f, _ := v.Float()
		return f
	case packstream.KindString:
		s, _ := v.Str()
		return s
	case packstream.KindList:
		items, _ := v.List()
		out := make([]interface{}, len(items))
		for i, it := range items {
			out[i] = valueToGo(it)
		}
		return out
	case packstream.KindMap:
		entries, _ := v.MapEntries()
		out := make(map[string]interface{}, len(entries))
		for _, e := range entries {
			out[e.Key] = valueToGo(e.Value)
		}
		return out
	default:
		return v
	}
}
