package gobolt

import (
	"testing"

	"github.com/cleishm/gobolt/packstream"
)

func TestDecodeSummaryTypeAndCounters(t *testing.T) {
	meta := packstream.Map([]packstream.MapEntry{
		{Key: "type", Value: packstream.String("w")},
		{Key: "stats", Value: packstream.Map([]packstream.MapEntry{
			{Key: "nodes-created", Value: packstream.Int(2)},
			{Key: "relationships-created", Value: packstream.Int(1)},
		})},
	})
	s, err := decodeSummary(meta)
	if err != nil {
		t.Fatalf("decodeSummary: %v", err)
	}
	if s.Type != "w" {
		t.Fatalf("Type = %q, want \"w\"", s.Type)
	}
	if s.Counters.NodesCreated != 2 || s.Counters.RelationshipsCreated != 1 {
		t.Fatalf("Counters = %+v", s.Counters)
	}
}

func TestDecodeSummaryPlanAndProfile(t *testing.T) {
	plan := packstream.Map([]packstream.MapEntry{
		{Key: "operatorType", Value: packstream.String("ProduceResults")},
		{Key: "rows", Value: packstream.Int(10)},
		{Key: "dbHits", Value: packstream.Int(5)},
		{Key: "identifiers", Value: packstream.List([]packstream.Value{packstream.String("n")})},
		{Key: "children", Value: packstream.List(nil)},
	})
	meta := packstream.Map([]packstream.MapEntry{
		{Key: "plan", Value: plan},
		{Key: "profile", Value: plan},
	})
	s, err := decodeSummary(meta)
	if err != nil {
		t.Fatalf("decodeSummary: %v", err)
	}
	p, err := s.PlanOrError()
	if err != nil {
		t.Fatalf("PlanOrError: %v", err)
	}
	if p.OperatorType != "ProduceResults" || p.Rows != 10 || p.DBHits != 5 {
		t.Fatalf("plan = %+v", p)
	}
	if len(p.Identifiers) != 1 || p.Identifiers[0] != "n" {
		t.Fatalf("Identifiers = %v", p.Identifiers)
	}
	if s.Profile == nil || s.Profile.OperatorType != "ProduceResults" {
		t.Fatalf("Profile = %+v", s.Profile)
	}
}

func TestDecodeSummaryEmptyMeta(t *testing.T) {
	s, err := decodeSummary(packstream.Map(nil))
	if err != nil {
		t.Fatalf("decodeSummary: %v", err)
	}
	if s.Type != "" || s.Plan != nil || s.Profile != nil {
		t.Fatalf("expected zero-value summary, got %+v", s)
	}
}

func TestPlanOrErrorReportsNoPlanAvailable(t *testing.T) {
	s := &Summary{}
	if _, err := s.PlanOrError(); !IsKind(err, KindNoPlanAvailable) {
		t.Fatalf("err kind = %v, want NoPlanAvailable", KindOf(err))
	}
}

func TestValueToGoFlattensNestedShapes(t *testing.T) {
	v := packstream.Map([]packstream.MapEntry{
		{Key: "n", Value: packstream.Int(3)},
		{Key: "list", Value: packstream.List([]packstream.Value{packstream.Bool(true), packstream.Null()})},
	})
	got, ok := valueToGo(v).(map[string]interface{})
	if !ok {
		t.Fatalf("valueToGo did not return a map: %T", valueToGo(v))
	}
	if got["n"] != int64(3) {
		t.Fatalf("n = %v, want int64(3)", got["n"])
	}
	list, ok := got["list"].([]interface{})
	if !ok || len(list) != 2 {
		t.Fatalf("list = %v", got["list"])
	}
	if list[0] != true || list[1] != nil {
		t.Fatalf("list contents = %v", list)
	}
}
