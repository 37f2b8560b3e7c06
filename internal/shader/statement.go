package shader

import "fmt"

// Op enumerates statement operations.
type Op uint8

const (
	OpNop Op = iota
	OpMov

	// arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpAbs
	OpMin
	OpMax
	OpClamp
	OpMix
	OpDot
	OpFract
	OpFloor
	OpRound
	OpTrunc
	OpSqrt
	OpRsqrt
	OpRcp
	OpLog2
	OpExp2
	OpPow
	OpSin
	OpCos
	OpIsNan
	OpMulMatrix

	// bitwise and logic
	OpAnd
	OpOr
	OpXor
	OpNot
	OpShl
	OpShr

	// comparison
	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe

	// conversion
	OpToFloat
	OpToInt
	OpToUint
	OpBitcastFloat
	OpBitcastInt
	OpNewVector2
	OpNewVector3

	// resources
	OpSample
	OpLoad
	OpStore
	OpSubpassLoad
	OpAtomicAdd
	OpAtomicAnd
	OpAtomicOr

	// control flow
	OpIfBegin
	OpElse
	OpIfEnd
	OpLoopBegin
	OpLoopEnd
	OpBreak
	OpDiscard

	// OpSourceLine marks the high-level line the following statements came from.
	OpSourceLine

	opCount
)

type opInfo struct {
	name   string
	hasDst bool
	srcs   int
}

var opInfos = [opCount]opInfo{
	OpNop: {"nop", false, 0},
	OpMov: {"mov", true, 1},

	OpAdd:       {"add", true, 2},
	OpSub:       {"sub", true, 2},
	OpMul:       {"mul", true, 2},
	OpDiv:       {"div", true, 2},
	OpNeg:       {"neg", true, 1},
	OpAbs:       {"abs", true, 1},
	OpMin:       {"min", true, 2},
	OpMax:       {"max", true, 2},
	OpClamp:     {"clamp", true, 3},
	OpMix:       {"mix", true, 3},
	OpDot:       {"dot", true, 2},
	OpFract:     {"fract", true, 1},
	OpFloor:     {"floor", true, 1},
	OpRound:     {"round", true, 1},
	OpTrunc:     {"trunc", true, 1},
	OpSqrt:      {"sqrt", true, 1},
	OpRsqrt:     {"rsqrt", true, 1},
	OpRcp:       {"rcp", true, 1},
	OpLog2:      {"log2", true, 1},
	OpExp2:      {"exp2", true, 1},
	OpPow:       {"pow", true, 2},
	OpSin:       {"sin", true, 1},
	OpCos:       {"cos", true, 1},
	OpIsNan:     {"isnan", true, 1},
	OpMulMatrix: {"mul_matrix", true, 2},

	OpAnd: {"and", true, 2},
	OpOr:  {"or", true, 2},
	OpXor: {"xor", true, 2},
	OpNot: {"not", true, 1},
	OpShl: {"shl", true, 2},
	OpShr: {"shr", true, 2},

	OpCmpEq: {"cmp_eq", true, 2},
	OpCmpNe: {"cmp_ne", true, 2},
	OpCmpLt: {"cmp_lt", true, 2},
	OpCmpLe: {"cmp_le", true, 2},
	OpCmpGt: {"cmp_gt", true, 2},
	OpCmpGe: {"cmp_ge", true, 2},

	OpToFloat:      {"to_float", true, 1},
	OpToInt:        {"to_int", true, 1},
	OpToUint:       {"to_uint", true, 1},
	OpBitcastFloat: {"bitcast_float", true, 1},
	OpBitcastInt:   {"bitcast_int", true, 1},
	OpNewVector2:   {"new_vector2", true, 2},
	OpNewVector3:   {"new_vector3", true, 3},

	OpSample:      {"sample", true, 2},
	OpLoad:        {"load", true, 2},
	OpStore:       {"store", false, 3},
	OpSubpassLoad: {"subpass_load", true, 1},
	OpAtomicAdd:   {"atomic_add", true, 3},
	OpAtomicAnd:   {"atomic_and", true, 3},
	OpAtomicOr:    {"atomic_or", true, 3},

	OpIfBegin:   {"if", false, 1},
	OpElse:      {"else", false, 0},
	OpIfEnd:     {"endif", false, 0},
	OpLoopBegin: {"loop", false, 0},
	OpLoopEnd:   {"endloop", false, 0},
	OpBreak:     {"break", false, 0},
	OpDiscard:   {"discard", false, 0},

	OpSourceLine: {"line", false, 0},
}

// IsValid reports whether op is a known operation.
func (op Op) IsValid() bool { return op < opCount }

func (op Op) String() string {
	if !op.IsValid() {
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
	return opInfos[op].name
}

// HasDst reports whether op writes a destination.
func (op Op) HasDst() bool { return op.IsValid() && opInfos[op].hasDst }

// SrcCount returns how many source operands op reads.
func (op Op) SrcCount() int {
	if !op.IsValid() {
		return 0
	}
	return opInfos[op].srcs
}

// ParseOp maps the spelling used by String back to an Op.
func ParseOp(name string) (Op, bool) {
	for i := range opInfos {
		if opInfos[i].name == name {
			return Op(i), true
		}
	}
	return OpNop, false
}

// MaxSources bounds the number of source operands of a statement.
const MaxSources = 3

// SymbolRef is a symbol read or written through a swizzle.
type SymbolRef struct {
	Symbol  Symbol  `msgpack:"sym"`
	Swizzle Swizzle `msgpack:"swz"`
}

// Ref pairs sym with swizzle.
func Ref(sym Symbol, swizzle Swizzle) SymbolRef {
	return SymbolRef{Symbol: sym, Swizzle: swizzle}
}

// FullRef references all four components of sym.
func FullRef(sym Symbol) SymbolRef {
	return SymbolRef{Symbol: sym, Swizzle: SwizzleXYZW}
}

// IsUsed reports whether the operand slot is filled.
func (r SymbolRef) IsUsed() bool { return r.Symbol.IsValid() }

// Statement is one instruction of the stream.
type Statement struct {
	Op   Op                    `msgpack:"op"`
	Dst  SymbolRef             `msgpack:"dst"`
	Src  [MaxSources]SymbolRef `msgpack:"src"`
	Line uint32                `msgpack:"line,omitempty"` // OpSourceLine only
}

// NewStatement builds a statement. Passing more than MaxSources sources is a
// programming error and panics.
func NewStatement(op Op, dst SymbolRef, srcs ...SymbolRef) Statement {
	if len(srcs) > MaxSources {
		panic(fmt.Sprintf("shader.NewStatement: %s given %d sources, at most %d allowed", op, len(srcs), MaxSources))
	}
	st := Statement{Op: op, Dst: dst}
	copy(st.Src[:], srcs)
	return st
}

// Sources returns the filled source operands.
func (st *Statement) Sources() []SymbolRef {
	out := make([]SymbolRef, 0, MaxSources)
	for _, r := range st.Src {
		if r.IsUsed() {
			out = append(out, r)
		}
	}
	return out
}

// Statements exposes the instruction stream in insertion order.
// The returned slice belongs to the builder and must not be modified.
func (b *Builder) Statements() []Statement {
	return b.statements
}

// InsertStatement appends st to the stream.
func (b *Builder) InsertStatement(st Statement) {
	b.statements = append(b.statements, st)
}

// SetSourceLine appends a marker attributing the following statements to line.
func (b *Builder) SetSourceLine(line uint32) {
	b.InsertStatement(Statement{Op: OpSourceLine, Line: line})
}
