package value

import "testing"

func TestTableGetSetMember(t *testing.T) {
	tbl := NewTable()
	tbl.SetMember(String("x"), Number(10))
	if got := tbl.GetMember(String("x")); got != Value(Number(10)) {
		t.Fatalf("GetMember(x) = %v, want 10", got)
	}
	if got := tbl.GetMember(String("missing")); got != Value(Nil{}) {
		t.Fatalf("GetMember(missing) = %v, want Nil", got)
	}
}

func TestTableSetNilRemoves(t *testing.T) {
	tbl := NewTable()
	tbl.SetMember(String("x"), Number(1))
	tbl.SetMember(String("x"), Nil{})
	if got := tbl.GetMember(String("x")); got != Value(Nil{}) {
		t.Fatalf("after setting nil, GetMember(x) = %v, want Nil", got)
	}
}

func TestTableLen(t *testing.T) {
	tbl := NewTable()
	for i := 1; i <= 3; i++ {
		tbl.SetMember(Number(i), String("v"))
	}
	if got := tbl.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	tbl.SetMember(Number(2), Nil{})
	if got := tbl.Len(); got != 1 {
		t.Fatalf("after removing key 2, Len() = %d, want 1 (stops at the gap)", got)
	}
}

func TestTableMetamethod(t *testing.T) {
	tbl := NewTable()
	mt := NewTable()
	mt.SetMember(String(MetaAdd), &GoFunc{Name: "add", Fn: func(args []Value) ([]Value, error) {
		return []Value{Number(42)}, nil
	}})
	tbl.SetMetatable(mt)

	mm, ok := tbl.Metamethod(MetaAdd)
	if !ok {
		t.Fatal("Metamethod(__add) not found")
	}
	results, err := mm.(Callable).Call(nil)
	if err != nil {
		t.Fatalf("metamethod call failed: %v", err)
	}
	if len(results) != 1 || results[0] != Value(Number(42)) {
		t.Fatalf("metamethod returned %v, want [42]", results)
	}
}
