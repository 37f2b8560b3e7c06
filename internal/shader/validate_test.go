package shader

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAcceptsWellFormedStream(t *testing.T) {
	b := NewBuilder()
	in := b.CreateInput(SemanticTexcoord, 0)
	tex := b.CreateTexture2D(0)
	tmp := b.CreateTemporary()
	out := b.CreateOutput(SemanticSystemColor, 0)
	cond := b.CreateTemporaryBool()
	buf := b.CreateUniformArrayUint("buf", 1, 0)
	idx := b.CreateConstantInt(0, 0, 0, 0)

	b.SetSourceLine(1)
	b.InsertStatement(NewStatement(OpSample, FullRef(tmp), FullRef(tex), Ref(in, SwizzleXY)))
	b.InsertStatement(NewStatement(OpCmpGt, Ref(cond, SwizzleX), Ref(tmp, SwizzleW), Ref(in, SwizzleZ)))
	b.InsertStatement(NewStatement(OpIfBegin, SymbolRef{}, Ref(cond, SwizzleX)))
	b.InsertStatement(NewStatement(OpDiscard, SymbolRef{}))
	b.InsertStatement(NewStatement(OpIfEnd, SymbolRef{}))
	b.InsertStatement(NewStatement(OpStore, SymbolRef{}, FullRef(buf), Ref(idx, SwizzleX), Ref(tmp, SwizzleX)))
	b.InsertStatement(NewStatement(OpMov, Ref(out, SwizzleXZ), Ref(tmp, SwizzleYW)))

	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateReportsStructuralErrors(t *testing.T) {
	b := NewBuilder()
	tmp := b.CreateTemporary()
	foreign := NewBuilder().CreateVariableFloat("elsewhere")

	b.InsertStatement(NewStatement(OpMov, Ref(tmp, SwizzleYX), FullRef(tmp)))
	b.InsertStatement(NewStatement(OpAdd, FullRef(tmp), FullRef(tmp)))
	b.InsertStatement(NewStatement(OpNeg, FullRef(tmp), FullRef(foreign)))
	b.InsertStatement(NewStatement(OpElse, FullRef(tmp)))
	b.InsertStatement(Statement{Op: Op(250)})
	b.InsertStatement(NewStatement(OpMov, SymbolRef{}, FullRef(tmp)))
	b.InsertStatement(NewStatement(OpAbs, FullRef(tmp), Ref(tmp, 0)))
	b.InsertStatement(NewStatement(OpNot, FullRef(tmp), FullRef(tmp), FullRef(tmp)))

	err := b.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	if !errors.Is(err, ErrNotMask) {
		t.Fatalf("expected ErrNotMask in %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		"statement 0 (mov)",
		"statement 1 (add): missing source 2",
		"statement 2 (neg): source 1",
		"statement 3 (else): unexpected destination",
		"unknown op",
		"statement 5 (mov): missing destination",
		"statement 6 (abs): source 1 has malformed swizzle",
		"statement 7 (not): unexpected source 2",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing %q in:\n%s", want, msg)
		}
	}
}
