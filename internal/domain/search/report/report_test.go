package report

import (
	"reflect"
	"testing"
)

func TestReport_SeqIDs_DedupesAndSkipsUnlinkable(t *testing.T) {
	r := &Report{Queries: []*Query{
		{ID: "q1", Hits: []*Hit{{ID: "a", SeqID: "a"}, {ID: "b"}}},
		{ID: "q2", Hits: []*Hit{{ID: "c", SeqID: "c"}, {ID: "a", SeqID: "a"}}},
	}}
	if got := r.SeqIDs(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("SeqIDs() = %v", got)
	}
	if r.HitCount() != 4 {
		t.Errorf("HitCount() = %d", r.HitCount())
	}
}

func TestLookups(t *testing.T) {
	r := &Report{Queries: []*Query{{ID: "q1", Hits: []*Hit{{ID: "h1"}}}}}
	q, ok := r.Query("q1")
	if !ok {
		t.Fatal("Query(q1) not found")
	}
	if _, ok := q.Hit("h1"); !ok {
		t.Error("Hit(h1) not found")
	}
	if _, ok := r.Query("q2"); ok {
		t.Error("Query(q2) should not be found")
	}
	if (&Hit{ID: "x"}).Linkable() {
		t.Error("hit without SeqID must not be linkable")
	}
}
