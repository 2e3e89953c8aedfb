package value

import "golang.org/x/exp/slices"

// Metamethod names consulted by the arithmetic, comparison, equality, and
// concatenation opcode handlers (spec.md §3). Indexing and length consult no
// metamethod.
const (
	MetaAdd    = "__add"
	MetaSub    = "__sub"
	MetaMul    = "__mul"
	MetaDiv    = "__div"
	MetaMod    = "__mod"
	MetaPow    = "__pow"
	MetaUnm    = "__unm"
	MetaConcat = "__concat"
	MetaEq     = "__eq"
	MetaLe     = "__le"
)

// Table is the external "Table" collaborator of spec.md §3: member get/set
// keyed by any non-nil value, an optional metatable, and a length operator
// counting consecutive integer keys from 1.
//
// This is a reference implementation used for testing the core and for the
// ambient CLI; the core itself only ever talks to the narrower surface
// described by spec.md §6 (getMember/setMember/metatable/length).
type Table struct {
	entries   map[Value]Value
	metatable *Table
}

func NewTable() *Table {
	return &Table{entries: make(map[Value]Value)}
}

func (t *Table) Type() string   { return "table" }
func (t *Table) String() string { return "table" }

// GetMember returns the value stored under key, or Nil if absent.
func (t *Table) GetMember(key Value) Value {
	if v, ok := t.entries[normalizeKey(key)]; ok {
		return v
	}
	return Nil{}
}

// SetMember stores value under key. Storing Nil removes the entry, matching
// the usual table semantics (nil cannot be observed as a present member).
func (t *Table) SetMember(key, val Value) {
	key = normalizeKey(key)
	if _, isNil := val.(Nil); isNil || val == nil {
		delete(t.entries, key)
		return
	}
	t.entries[key] = val
}

// Metatable returns the table's metatable, or nil if it has none.
func (t *Table) Metatable() *Table { return t.metatable }

// SetMetatable attaches (or clears, with nil) a metatable.
func (t *Table) SetMetatable(mt *Table) { t.metatable = mt }

// Metamethod looks up a named metamethod on t's metatable, if any.
func (t *Table) Metamethod(name string) (Value, bool) {
	if t.metatable == nil {
		return nil, false
	}
	v := t.metatable.GetMember(String(name))
	if _, isNil := v.(Nil); isNil {
		return nil, false
	}
	return v, true
}

// Len implements the length operator: the highest k such that integer keys
// 1..k are all present with no gap.
func (t *Table) Len() int {
	n := 0
	for {
		if _, ok := t.entries[Number(n+1)]; !ok {
			break
		}
		n++
	}
	return n
}

// Keys returns the table's keys sorted into a deterministic order (by type
// name, then string form), for callers that need reproducible output
// across runs.
func (t *Table) Keys() []Value {
	keys := make([]Value, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Value) int {
		as, bs := keyOrderString(a), keyOrderString(b)
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	})
	return keys
}

// normalizeKey maps a Go nil key to the Nil sentinel and returns every other
// key unchanged: a Go map keyed by the Value interface already compares
// Number/String/Boolean/Nil keys by value (comparable underlying types).
func normalizeKey(v Value) Value {
	if v == nil {
		return Nil{}
	}
	return v
}

func keyOrderString(v Value) string {
	return v.Type() + ":" + v.String()
}
