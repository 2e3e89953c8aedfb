// Package machine implements the interpreter core: the register file, the
// upvalue cell, the 38-opcode dispatch table, and the activation driver
// (spec.md §2/§4). Instruction encoding follows the classic Lua 5.1 bit
// layout cross-checked against the other_examples MilkLua opcode reference
// (6-bit opcode, 8-bit A, 9-bit B, 9-bit C in a 32-bit word), which is what
// spec.md §3's RK-encoded B/C operands require: registers and constants
// share one 0..511 operand space, so B/C need 9 bits, not the 8 the
// teacher's own register VM uses for its separate *K opcodes. Decoding
// helpers (A()/B()/C()/Bx()/sBx()) otherwise follow the teacher's
// internal/vmregister/bytecode.go naming and shape.
package machine

// OpCode indexes the 38 handlers in the fixed order spec.md §4.4 mandates.
// This ordinal indexing is the contract with the bytecode format; it must
// never be reshuffled (spec.md §9).
type OpCode uint8

const (
	OpMove OpCode = iota
	OpLoadK
	OpLoadBool
	OpLoadNil
	OpGetUpval
	OpGetGlobal
	OpGetTable
	OpSetGlobal
	OpSetUpval
	OpSetTable
	OpNewTable
	OpSelf
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpUnm
	OpNot
	OpLen
	OpConcat
	OpJmp
	OpEq
	OpLt
	OpLe
	OpTest
	OpTestSet
	OpCall
	OpTailCall
	OpReturn
	OpForLoop
	OpForPrep
	OpTForLoop
	OpSetList
	OpClose
	OpClosure
	OpVarArg

	opCodeCount
)

var opNames = [opCodeCount]string{
	OpMove: "MOVE", OpLoadK: "LOADK", OpLoadBool: "LOADBOOL", OpLoadNil: "LOADNIL",
	OpGetUpval: "GETUPVAL", OpGetGlobal: "GETGLOBAL", OpGetTable: "GETTABLE",
	OpSetGlobal: "SETGLOBAL", OpSetUpval: "SETUPVAL", OpSetTable: "SETTABLE",
	OpNewTable: "NEWTABLE", OpSelf: "SELF", OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL",
	OpDiv: "DIV", OpMod: "MOD", OpPow: "POW", OpUnm: "UNM", OpNot: "NOT", OpLen: "LEN",
	OpConcat: "CONCAT", OpJmp: "JMP", OpEq: "EQ", OpLt: "LT", OpLe: "LE", OpTest: "TEST",
	OpTestSet: "TESTSET", OpCall: "CALL", OpTailCall: "TAILCALL", OpReturn: "RETURN",
	OpForLoop: "FORLOOP", OpForPrep: "FORPREP", OpTForLoop: "TFORLOOP",
	OpSetList: "SETLIST", OpClose: "CLOSE", OpClosure: "CLOSURE", OpVarArg: "VARARG",
}

func (op OpCode) String() string {
	if op < opCodeCount {
		return opNames[op]
	}
	return "UNKNOWN"
}

// Instruction is a packed (opcode, A, B, C) triple, with B+C reinterpreted
// as a wide Bx/sBx field for opcodes that need it (spec.md §3
// "Instruction").
type Instruction uint32

const (
	sizeOp = 6
	sizeA  = 8
	sizeC  = 9
	sizeB  = 9

	posOp = 0
	posA  = posOp + sizeOp
	posC  = posA + sizeA
	posB  = posC + sizeC

	sizeBx = sizeB + sizeC
	posBx  = posC

	maskOp = 1<<sizeOp - 1
	maskA  = 1<<sizeA - 1
	maskB  = 1<<sizeB - 1
	maskC  = 1<<sizeC - 1
	maskBx = 1<<sizeBx - 1

	// sBx is biased by half the Bx range so it can represent negative jumps
	// while staying unsigned in the packed word.
	sBxBias = maskBx >> 1
)

// NewABC packs an iABC-format instruction. b and c are RK-capable operands
// (0..511): values >= 256 name a constant, spec.md §3.
func NewABC(op OpCode, a uint8, b, c uint16) Instruction {
	return Instruction(op)&maskOp |
		Instruction(a)&maskA<<posA |
		Instruction(c)&maskC<<posC |
		Instruction(b)&maskB<<posB
}

// NewABx packs an iABx-format instruction (B and C together form Bx).
func NewABx(op OpCode, a uint8, bx uint32) Instruction {
	return Instruction(op)&maskOp | Instruction(a)&maskA<<posA | Instruction(bx)&maskBx<<posBx
}

// NewAsBx packs an iAsBx-format instruction (a signed wide field, for jumps).
func NewAsBx(op OpCode, a uint8, sbx int32) Instruction {
	return NewABx(op, a, uint32(sbx+sBxBias))
}

func (i Instruction) OpCode() OpCode { return OpCode(i >> posOp & maskOp) }
func (i Instruction) A() uint8       { return uint8(i >> posA & maskA) }
func (i Instruction) B() uint16      { return uint16(i >> posB & maskB) }
func (i Instruction) C() uint16      { return uint16(i >> posC & maskC) }
func (i Instruction) Bx() uint32     { return uint32(i >> posBx & maskBx) }
func (i Instruction) SBx() int32     { return int32(i.Bx()) - sBxBias }

// rkConstBase is the threshold spec.md §3 defines for RK-encoded operands:
// values >= 256 name a constant (value-256); values < 256 name a register.
const rkConstBase = 256

func isConstOperand(raw uint16) bool { return raw >= rkConstBase }
