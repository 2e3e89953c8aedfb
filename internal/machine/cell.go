package machine

import "wisp/internal/value"

// Cell is the upvalue cell of spec.md §3/§4.2: exactly one of two states.
// Open, it delegates Get/Set to a register of a live parent activation;
// Closed, it holds a captured value directly. Grounded on the teacher's
// UpvalueObj (internal/vmregister/value.go: Location *Value / Closed
// Value), which already encodes this same open/closed duality.
type Cell struct {
	regs *RegisterFile // non-nil while open
	reg  int           // register index while open

	closed bool
	value  value.Value
}

// newOpenCell creates a cell bound to a live register of regs.
func newOpenCell(regs *RegisterFile, reg int) *Cell {
	return &Cell{regs: regs, reg: reg}
}

// Get returns the cell's current value.
func (c *Cell) Get() value.Value {
	if c.closed {
		return c.value
	}
	return c.regs.Get(c.reg)
}

// Set updates the cell's current value.
func (c *Cell) Set(v value.Value) {
	if c.closed {
		c.value = v
		return
	}
	c.regs.Set(c.reg, v)
}

// Close transitions the cell to closed with finalValue, unlinking it from
// any register. Subsequent Get/Set operate purely on the stored value.
// Idempotent: closing an already-closed cell is a no-op (the spec's "exactly
// once" lifecycle is enforced by callers only invoking Close from RETURN/
// CLOSE on still-open entries, but Close itself stays safe to call twice).
func (c *Cell) Close(finalValue value.Value) {
	if c.closed {
		return
	}
	c.closed = true
	c.value = finalValue
	c.regs = nil
}

// IsOpen reports whether the cell is still bound to a live register.
func (c *Cell) IsOpen() bool { return !c.closed }

// Register returns the bound register index and true while the cell is
// open; otherwise (0, false).
func (c *Cell) Register() (int, bool) {
	if c.closed {
		return 0, false
	}
	return c.reg, true
}
