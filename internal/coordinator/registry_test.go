package coordinator

import (
	"testing"

	"github.com/kingrea/redraft/internal/text"
)

func pendingOp(id string, seq int, span text.Span, snapshot string) *Operation {
	return &Operation{
		ID:       id,
		Seq:      seq,
		Span:     span,
		Snapshot: snapshot,
		Status:   StatusPending,
	}
}

func TestRegistryMarkOnVanishedOpIsNoOp(t *testing.T) {
	reg := newRegistry()
	reg.add(pendingOp("op-1", 1, text.Span{Start: 0, End: 5}, "Hello"))
	if !reg.remove("op-1") {
		t.Fatal("expected removal of a present record")
	}
	if reg.markCompleted("op-1", "Hi") {
		t.Fatal("markCompleted on a removed id must be a no-op")
	}
	if reg.markError("op-1", "boom") {
		t.Fatal("markError on a removed id must be a no-op")
	}
	if reg.remove("op-1") {
		t.Fatal("second removal must report absence")
	}
	if got := reg.len(); got != 0 {
		t.Fatalf("registry should stay empty, has %d", got)
	}
}

func TestRegistrySingleTransition(t *testing.T) {
	reg := newRegistry()
	reg.add(pendingOp("op-1", 1, text.Span{Start: 0, End: 5}, "Hello"))
	if !reg.markCompleted("op-1", "Hi") {
		t.Fatal("expected the pending record to complete")
	}
	if reg.markError("op-1", "late failure") {
		t.Fatal("a settled record must not transition again")
	}
	op, ok := reg.find("op-1")
	if !ok || op.Status != StatusCompleted || op.Result != "Hi" {
		t.Fatalf("unexpected record state: %+v", op)
	}
}

func TestRegistryListOrderedBySeq(t *testing.T) {
	reg := newRegistry()
	reg.add(pendingOp("op-3", 3, text.Span{Start: 20, End: 25}, "ccccc"))
	reg.add(pendingOp("op-1", 1, text.Span{Start: 0, End: 5}, "aaaaa"))
	reg.add(pendingOp("op-2", 2, text.Span{Start: 10, End: 15}, "bbbbb"))
	listed := reg.list()
	if len(listed) != 3 {
		t.Fatalf("expected 3 records, got %d", len(listed))
	}
	for i, want := range []string{"op-1", "op-2", "op-3"} {
		if listed[i].ID != want {
			t.Fatalf("position %d: got %s, want %s", i, listed[i].ID, want)
		}
	}
}

func TestRegistryListReturnsClones(t *testing.T) {
	reg := newRegistry()
	reg.add(pendingOp("op-1", 1, text.Span{Start: 0, End: 5}, "Hello"))
	listed := reg.list()
	listed[0].Status = StatusError
	listed[0].Error = "mutated"
	op, _ := reg.find("op-1")
	if op.Status != StatusPending || op.Error != "" {
		t.Fatal("list must hand out clones, not live records")
	}
}

func TestRegistryCompletedBefore(t *testing.T) {
	reg := newRegistry()
	reg.add(&Operation{ID: "before", Seq: 1, Span: text.Span{Start: 0, End: 5}, Snapshot: "Hello", Result: "Hi", Status: StatusCompleted})
	reg.add(&Operation{ID: "touching", Seq: 2, Span: text.Span{Start: 5, End: 10}, Snapshot: "xxxxx", Result: "x", Status: StatusCompleted})
	reg.add(&Operation{ID: "after", Seq: 3, Span: text.Span{Start: 15, End: 20}, Snapshot: "yyyyy", Result: "yy", Status: StatusCompleted})
	reg.add(&Operation{ID: "self", Seq: 4, Span: text.Span{Start: 0, End: 3}, Snapshot: "abc", Result: "ab", Status: StatusCompleted})

	got := reg.completedBefore(10, "self")
	ids := map[string]bool{}
	for _, op := range got {
		ids[op.ID] = true
	}
	if !ids["before"] || !ids["touching"] {
		t.Fatalf("expected fully-preceding ops, got %v", ids)
	}
	if ids["after"] || ids["self"] {
		t.Fatalf("after/self must be excluded, got %v", ids)
	}
}

func TestRegistryOverlapping(t *testing.T) {
	reg := newRegistry()
	reg.add(pendingOp("op-1", 1, text.Span{Start: 0, End: 10}, "0123456789"))
	if _, ok := reg.overlapping(text.Span{Start: 10, End: 15}); ok {
		t.Fatal("touching spans do not overlap")
	}
	other, ok := reg.overlapping(text.Span{Start: 5, End: 15})
	if !ok || other.ID != "op-1" {
		t.Fatalf("expected overlap with op-1, got %v %v", other, ok)
	}
}
