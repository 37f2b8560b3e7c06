package shader

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// DumpOptions configures Dump.
type DumpOptions struct {
	// SkipLines drops source-line markers from the listing.
	SkipLines bool
}

// Dump writes a human-readable listing of declarations, metadata and statements.
func Dump(w io.Writer, b *Builder, opts DumpOptions) error {
	if w == nil || b == nil {
		return nil
	}
	var out strings.Builder

	fmt.Fprintf(&out, "symbols=%d\n", len(b.symbols))
	for _, sym := range b.symbols {
		fmt.Fprintf(&out, "  %s: %s%s\n", OperandName(sym), sym.Type, b.declDetail(sym))
	}

	if len(b.metadata) > 0 {
		fmt.Fprintf(&out, "metadata=%d\n", len(b.metadata))
		for _, kind := range slices.Sorted(maps.Keys(b.metadata)) {
			fmt.Fprintf(&out, "  %s=%d\n", kind, b.metadata[kind])
		}
	}

	fmt.Fprintf(&out, "statements=%d\n", len(b.statements))
	for i := range b.statements {
		st := &b.statements[i]
		if st.Op == OpSourceLine && opts.SkipLines {
			continue
		}
		fmt.Fprintf(&out, "  %s\n", FormatStatement(st))
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func (b *Builder) declDetail(sym Symbol) string {
	var parts []string
	switch sym.Location {
	case LocationInput:
		if info, ok := b.inputSemantics[sym.Index]; ok {
			parts = append(parts, "semantic="+info.String())
		}
	case LocationOutput:
		if info, ok := b.outputSemantics[sym.Index]; ok {
			parts = append(parts, "semantic="+info.String())
		}
	case LocationVariable:
		parts = append(parts, "name="+b.variableNames[sym.Index])
	case LocationUniform:
		parts = append(parts, "name="+b.uniformNames[sym.Index], fmt.Sprintf("unit=%d", sym.Unit))
		if sym.Attributes != 0 {
			parts = append(parts, "attrs="+formatAttributes(sym.Attributes))
		}
	case LocationTemporary:
		if v, ok := b.floatValues[sym.Index]; ok && sym.Type == TypeFloat4 {
			parts = append(parts, "const="+v.String())
		} else if v, ok := b.intValues[sym.Index]; ok && sym.Type.IsIntegerVector() {
			if sym.Type == TypeUint4 {
				u := v.Uint()
				parts = append(parts, fmt.Sprintf("const=(%d, %d, %d, %d)", u[0], u[1], u[2], u[3]))
			} else {
				parts = append(parts, "const="+v.String())
			}
		} else if v, ok := b.boolValues[sym.Index]; ok && sym.Type == TypeBool4 {
			parts = append(parts, "const="+v.String())
		}
	case LocationTexture:
		parts = append(parts, fmt.Sprintf("unit=%d", sym.Unit))
		if sym.Index != NoIndex {
			parts = append(parts, fmt.Sprintf("index=%d", sym.Index))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func formatAttributes(a Attribute) string {
	var parts []string
	if a&AttributeCoherent != 0 {
		parts = append(parts, "coherent")
	}
	if a&AttributeReadOnly != 0 {
		parts = append(parts, "readonly")
	}
	if a&AttributeWriteOnly != 0 {
		parts = append(parts, "writeonly")
	}
	if rest := a &^ (AttributeCoherent | AttributeReadOnly | AttributeWriteOnly); rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// OperandName is the short name used for sym in listings: in0, out1, u2,
// var0, t5, tex3, img1, sub0.1.
func OperandName(sym Symbol) string {
	switch sym.Location {
	case LocationInput:
		return fmt.Sprintf("in%d", sym.Index)
	case LocationOutput:
		return fmt.Sprintf("out%d", sym.Index)
	case LocationUniform:
		return fmt.Sprintf("u%d", sym.Index)
	case LocationVariable:
		return fmt.Sprintf("var%d", sym.Index)
	case LocationTemporary:
		return fmt.Sprintf("t%d", sym.Index)
	case LocationTexture:
		switch sym.Type {
		case TypeImage2DUint:
			return fmt.Sprintf("img%d", sym.Unit)
		case TypeSubpassInput, TypeSubpassInputUint:
			return fmt.Sprintf("sub%d.%d", sym.Unit, sym.Index)
		default:
			return fmt.Sprintf("tex%d", sym.Unit)
		}
	default:
		return "_"
	}
}

func formatRef(r SymbolRef) string {
	name := OperandName(r.Symbol)
	if r.Swizzle == SwizzleXYZW || !r.Symbol.IsValid() {
		return name
	}
	return name + "." + r.Swizzle.String()
}

// FormatStatement renders one statement as "op dst, src1, src2".
func FormatStatement(st *Statement) string {
	if st.Op == OpSourceLine {
		return fmt.Sprintf("line %d", st.Line)
	}
	operands := make([]string, 0, 1+MaxSources)
	if st.Dst.IsUsed() {
		operands = append(operands, formatRef(st.Dst))
	}
	for _, r := range st.Sources() {
		operands = append(operands, formatRef(r))
	}
	if len(operands) == 0 {
		return st.Op.String()
	}
	return st.Op.String() + " " + strings.Join(operands, ", ")
}
