package machine

import (
	"testing"

	"wisp/internal/value"
)

func TestRegisterFileHolesReadAsNil(t *testing.T) {
	var r RegisterFile
	if got := r.Get(3); got != value.Value(value.Nil{}) {
		t.Fatalf("Get on an unset register = %v, want Nil", got)
	}
	r.Set(3, value.Number(9))
	if got := r.Get(0); got != value.Value(value.Nil{}) {
		t.Fatalf("Get on a hole before the written register = %v, want Nil", got)
	}
	if got := r.Get(3); got != value.Value(value.Number(9)) {
		t.Fatalf("Get(3) = %v, want 9", got)
	}
	if r.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", r.Len())
	}
}

func TestRegisterFileTruncate(t *testing.T) {
	var r RegisterFile
	r.Set(0, value.Number(1))
	r.Set(1, value.Number(2))
	r.Set(2, value.Number(3))
	r.Truncate(1)
	if r.Len() != 1 {
		t.Fatalf("Len() after Truncate(1) = %d, want 1", r.Len())
	}
	if got := r.Get(1); got != value.Value(value.Nil{}) {
		t.Fatalf("Get(1) after truncation = %v, want Nil", got)
	}
}

func TestRegisterFileDeleteAtLeavesHole(t *testing.T) {
	var r RegisterFile
	r.Set(0, value.Number(1))
	r.Set(1, value.Number(2))
	r.DeleteAt(0)
	if got := r.Get(0); got != value.Value(value.Nil{}) {
		t.Fatalf("Get(0) after DeleteAt = %v, want Nil", got)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() after DeleteAt = %d, want 2 (DeleteAt does not shrink, unlike Truncate)", r.Len())
	}
}

func TestRegisterFileSlice(t *testing.T) {
	var r RegisterFile
	r.Set(0, value.Number(1))
	r.Set(2, value.Number(3))
	got := r.Slice(0, 4)
	want := []value.Value{value.Number(1), value.Nil{}, value.Number(3), value.Nil{}}
	if len(got) != len(want) {
		t.Fatalf("Slice length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Slice()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
