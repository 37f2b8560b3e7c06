package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"nuanceur/internal/diag"
	"nuanceur/internal/shader"
)

// binder resolves manifest ids to builder symbols.
type binder struct {
	f      *File
	b      *shader.Builder
	r      diag.Reporter
	ids    map[string]shader.Symbol
	absent map[string]bool
	failed bool
}

// Build populates a fresh builder from f. Declarations are applied section by
// section (inputs, outputs, uniforms, variables, temporaries, constants,
// textures), then metadata, then statements. The builder is returned even on
// failure so callers can inspect what was declared; ok reports whether any
// error was emitted.
func (f *File) Build(r diag.Reporter) (b *shader.Builder, ok bool) {
	bd := &binder{
		f:      f,
		b:      shader.NewBuilder(),
		r:      r,
		ids:    make(map[string]shader.Symbol),
		absent: make(map[string]bool),
	}
	for i := range f.Inputs {
		bd.input(i, &f.Inputs[i])
	}
	for i := range f.Outputs {
		bd.output(i, &f.Outputs[i])
	}
	for i := range f.Uniforms {
		bd.uniform(i, &f.Uniforms[i])
	}
	for i := range f.Variables {
		bd.variable(i, &f.Variables[i])
	}
	for i := range f.Temporaries {
		bd.temporary(i, &f.Temporaries[i])
	}
	for i := range f.Constants {
		bd.constant(i, &f.Constants[i])
	}
	for i := range f.Textures {
		bd.texture(i, &f.Textures[i])
	}
	bd.metadata()
	for i := range f.Statements {
		bd.statement(i, &f.Statements[i])
	}
	return bd.b, !bd.failed
}

func (bd *binder) errorf(code diag.Code, format string, args ...any) {
	bd.failed = true
	diag.ReportError(bd.r, code, diag.Pos{Path: bd.f.Path}, fmt.Sprintf(format, args...))
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// declare records sym under id. An absent symbol marks the id as declared but
// unavailable.
func (bd *binder) declare(where, id string, sym shader.Symbol) {
	id = normalize(id)
	if id == "" {
		bd.errorf(diag.ManMissingField, "%s: missing id", where)
		return
	}
	if _, dup := bd.ids[id]; dup || bd.absent[id] {
		bd.errorf(diag.ManDuplicateID, "%s: id %q already declared", where, id)
		return
	}
	if !sym.IsValid() {
		bd.absent[id] = true
		return
	}
	bd.ids[id] = sym
}

func (bd *binder) parseType(where, name string, allowed ...shader.Type) (shader.Type, bool) {
	typ, ok := shader.ParseType(strings.ToLower(name))
	if ok && slices.Contains(allowed, typ) {
		return typ, true
	}
	names := make([]string, len(allowed))
	for i, t := range allowed {
		names[i] = t.String()
	}
	bd.errorf(diag.ManBadType, "%s: type %q not allowed (expected %s)", where, name, strings.Join(names, "|"))
	return shader.TypeNone, false
}

func (bd *binder) toUint32(where, field string, v int64) (uint32, bool) {
	out, err := safecast.Conv[uint32](v)
	if err != nil {
		bd.errorf(diag.ManOutOfRange, "%s: %s %d out of range", where, field, v)
		return 0, false
	}
	return out, true
}

func (bd *binder) semantic(where, name string, index int64) (shader.Semantic, uint32, bool) {
	sem, ok := shader.ParseSemantic(strings.ToLower(name))
	if !ok || sem == shader.SemanticNone {
		bd.errorf(diag.ManBadSemantic, "%s: unknown semantic %q", where, name)
		return shader.SemanticNone, 0, false
	}
	idx, ok := bd.toUint32(where, "semantic index", index)
	return sem, idx, ok
}

func available(p *bool) bool { return p == nil || *p }

func (bd *binder) input(i int, d *IODecl) {
	where := fmt.Sprintf("input[%d]", i)
	typ, ok := bd.parseType(where, d.Type, shader.TypeFloat4, shader.TypeInt4, shader.TypeUint4)
	sem, idx, sok := bd.semantic(where, d.Semantic, d.Index)
	if !ok || !sok {
		return
	}
	var sym shader.Symbol
	switch {
	case typ == shader.TypeFloat4:
		sym = bd.b.CreateOptionalInput(available(d.Available), sem, idx)
	case !available(d.Available):
	case typ == shader.TypeInt4:
		sym = bd.b.CreateInputInt(sem, idx)
	default:
		sym = bd.b.CreateInputUint(sem, idx)
	}
	bd.declare(where, d.ID, sym)
}

func (bd *binder) output(i int, d *IODecl) {
	where := fmt.Sprintf("output[%d]", i)
	typ, ok := bd.parseType(where, d.Type, shader.TypeFloat4, shader.TypeUint4)
	sem, idx, sok := bd.semantic(where, d.Semantic, d.Index)
	if !ok || !sok {
		return
	}
	var sym shader.Symbol
	switch {
	case typ == shader.TypeFloat4:
		sym = bd.b.CreateOptionalOutput(available(d.Available), sem, idx)
	case available(d.Available):
		sym = bd.b.CreateOutputUint(sem, idx)
	}
	bd.declare(where, d.ID, sym)
}

func (bd *binder) uniform(i int, d *UniformDecl) {
	where := fmt.Sprintf("uniform[%d]", i)
	typ, ok := bd.parseType(where, d.Type,
		shader.TypeFloat4, shader.TypeInt4, shader.TypeMatrix4x4,
		shader.TypeArrayUint, shader.TypeArrayUshort, shader.TypeArrayUchar)
	unit, uok := bd.toUint32(where, "unit", d.Unit)
	attrs, aok := bd.attributes(where, d.Attributes)
	if !ok || !uok || !aok {
		return
	}
	name := normalize(d.Name)
	if name == "" {
		bd.errorf(diag.ManMissingField, "%s: missing name", where)
		return
	}
	if typ != shader.TypeMatrix4x4 && d.Available != nil {
		bd.errorf(diag.ManBadValue, "%s: available is only supported for matrix uniforms", where)
		return
	}
	if len(attrs) > 0 && !isArray(typ) {
		bd.errorf(diag.ManBadAttribute, "%s: attributes are only supported for array uniforms", where)
		return
	}
	var mask shader.Attribute
	for _, a := range attrs {
		mask |= a
	}

	var sym shader.Symbol
	switch typ {
	case shader.TypeFloat4:
		sym = bd.b.CreateUniformFloat4(name, unit)
	case shader.TypeInt4:
		sym = bd.b.CreateUniformInt4(name, unit)
	case shader.TypeMatrix4x4:
		sym = bd.b.CreateOptionalUniformMatrix(available(d.Available), name, unit)
	case shader.TypeArrayUint:
		sym = bd.b.CreateUniformArrayUint(name, unit, mask)
	case shader.TypeArrayUshort:
		sym = bd.b.CreateUniformArrayUshort(name, unit, mask)
	case shader.TypeArrayUchar:
		sym = bd.b.CreateUniformArrayUchar(name, unit, mask)
	}
	bd.declare(where, d.ID, sym)
}

func isArray(t shader.Type) bool {
	return t == shader.TypeArrayUint || t == shader.TypeArrayUshort || t == shader.TypeArrayUchar
}

var attributeNames = map[string]shader.Attribute{
	"coherent":  shader.AttributeCoherent,
	"readonly":  shader.AttributeReadOnly,
	"writeonly": shader.AttributeWriteOnly,
}

func (bd *binder) attributes(where string, names []string) ([]shader.Attribute, bool) {
	out := make([]shader.Attribute, 0, len(names))
	ok := true
	for _, n := range names {
		a, found := attributeNames[strings.ToLower(n)]
		if !found {
			bd.errorf(diag.ManBadAttribute, "%s: unknown attribute %q", where, n)
			ok = false
			continue
		}
		out = append(out, a)
	}
	return out, ok
}

func (bd *binder) variable(i int, d *VariableDecl) {
	where := fmt.Sprintf("variable[%d]", i)
	typ, ok := bd.parseType(where, d.Type, shader.TypeFloat4, shader.TypeInt4, shader.TypeUint4, shader.TypeBool4)
	if !ok {
		return
	}
	name := normalize(d.Name)
	if name == "" {
		bd.errorf(diag.ManMissingField, "%s: missing name", where)
		return
	}
	var sym shader.Symbol
	switch typ {
	case shader.TypeFloat4:
		sym = bd.b.CreateVariableFloat(name)
	case shader.TypeInt4:
		sym = bd.b.CreateVariableInt(name)
	case shader.TypeUint4:
		sym = bd.b.CreateVariableUint(name)
	case shader.TypeBool4:
		sym = bd.b.CreateVariableBool(name)
	}
	bd.declare(where, d.ID, sym)
}

func (bd *binder) temporary(i int, d *TemporaryDecl) {
	where := fmt.Sprintf("temporary[%d]", i)
	typ, ok := bd.parseType(where, d.Type,
		shader.TypeFloat4, shader.TypeBool4, shader.TypeInt4,
		shader.TypeUint4, shader.TypeUshort4, shader.TypeUchar4)
	if !ok {
		return
	}
	var sym shader.Symbol
	switch typ {
	case shader.TypeFloat4:
		sym = bd.b.CreateTemporary()
	case shader.TypeBool4:
		sym = bd.b.CreateTemporaryBool()
	case shader.TypeInt4:
		sym = bd.b.CreateTemporaryInt()
	case shader.TypeUint4:
		sym = bd.b.CreateTemporaryUint()
	case shader.TypeUshort4:
		sym = bd.b.CreateTemporaryUshort()
	case shader.TypeUchar4:
		sym = bd.b.CreateTemporaryUchar()
	}
	bd.declare(where, d.ID, sym)
}

func (bd *binder) constant(i int, d *ConstantDecl) {
	where := fmt.Sprintf("constant[%d]", i)
	typ, ok := bd.parseType(where, d.Type, shader.TypeFloat4, shader.TypeInt4, shader.TypeUint4, shader.TypeBool4)
	if !ok {
		return
	}
	lanes, err := splat(d.Value)
	if err != nil {
		bd.errorf(diag.ManBadValue, "%s: %v", where, err)
		return
	}
	var sym shader.Symbol
	switch typ {
	case shader.TypeFloat4:
		v, err := convertLanes(lanes, floatLane)
		if err != nil {
			bd.errorf(diag.ManBadValue, "%s: %v", where, err)
			return
		}
		sym = bd.b.CreateConstant(v[0], v[1], v[2], v[3])
	case shader.TypeInt4:
		v, err := convertLanes(lanes, intLane[int32])
		if err != nil {
			bd.errorf(diag.ManBadValue, "%s: %v", where, err)
			return
		}
		sym = bd.b.CreateConstantInt(v[0], v[1], v[2], v[3])
	case shader.TypeUint4:
		v, err := convertLanes(lanes, intLane[uint32])
		if err != nil {
			bd.errorf(diag.ManBadValue, "%s: %v", where, err)
			return
		}
		sym = bd.b.CreateConstantUint(v[0], v[1], v[2], v[3])
	case shader.TypeBool4:
		v, err := convertLanes(lanes, boolLane)
		if err != nil {
			bd.errorf(diag.ManBadValue, "%s: %v", where, err)
			return
		}
		sym = bd.b.CreateConstantBool(v[0], v[1], v[2], v[3])
	}
	bd.declare(where, d.ID, sym)
}

func (bd *binder) texture(i int, d *TextureDecl) {
	where := fmt.Sprintf("texture[%d]", i)
	typ, ok := bd.parseType(where, d.Type,
		shader.TypeTexture2D, shader.TypeImage2DUint, shader.TypeSubpassInput, shader.TypeSubpassInputUint)
	unit, uok := bd.toUint32(where, "unit", d.Unit)
	if !ok || !uok {
		return
	}
	subpass := typ == shader.TypeSubpassInput || typ == shader.TypeSubpassInputUint
	if !subpass && d.Index != nil {
		bd.errorf(diag.ManBadValue, "%s: index is only supported for subpass inputs", where)
		return
	}
	var index uint32
	if d.Index != nil {
		// attachment slots are stored as non-negative int32 symbol indices
		v, err := safecast.Conv[int32](*d.Index)
		if err != nil || v < 0 {
			bd.errorf(diag.ManOutOfRange, "%s: index %d out of range", where, *d.Index)
			return
		}
		index = uint32(v)
	}
	var sym shader.Symbol
	switch typ {
	case shader.TypeTexture2D:
		sym = bd.b.CreateTexture2D(unit)
	case shader.TypeImage2DUint:
		sym = bd.b.CreateImage2DUint(unit)
	case shader.TypeSubpassInput:
		sym = bd.b.CreateSubpassInput(unit, index)
	case shader.TypeSubpassInputUint:
		sym = bd.b.CreateSubpassInputUint(unit, index)
	}
	bd.declare(where, d.ID, sym)
}

func (bd *binder) metadata() {
	for _, key := range slices.Sorted(maps.Keys(bd.f.Metadata)) {
		kind, ok := shader.ParseMetadataKind(strings.ToLower(key))
		if !ok {
			bd.errorf(diag.ManBadMetadata, "metadata: unknown key %q", key)
			continue
		}
		if v, ok := bd.toUint32("metadata", key, bd.f.Metadata[key]); ok {
			bd.b.SetMetadata(kind, v)
		}
	}
}

func (bd *binder) statement(i int, d *StatementDecl) {
	where := fmt.Sprintf("statement[%d]", i)
	if strings.TrimSpace(d.Op) == "" {
		bd.errorf(diag.ManEmptyStatement, "%s: missing op", where)
		return
	}
	op, ok := shader.ParseOp(strings.ToLower(strings.TrimSpace(d.Op)))
	if !ok || op == shader.OpSourceLine {
		bd.errorf(diag.ManBadOp, "%s: unknown op %q", where, d.Op)
		return
	}
	var line uint32
	if d.Line != nil {
		if line, ok = bd.toUint32(where, "line", *d.Line); !ok {
			return
		}
	}

	var dst shader.SymbolRef
	switch {
	case op.HasDst() && d.Dst == "":
		bd.errorf(diag.ManOperandCount, "%s: %s needs a destination", where, op)
		return
	case op.HasDst():
		ref, ok := bd.operand(where, d.Dst)
		if !ok {
			return
		}
		if !shader.IsMaskSwizzle(ref.Swizzle) {
			bd.errorf(diag.ManBadSwizzle, "%s: destination swizzle %s is not a write mask", where, ref.Swizzle)
			return
		}
		dst = ref
	case d.Dst != "":
		bd.errorf(diag.ManOperandCount, "%s: %s takes no destination", where, op)
		return
	}

	if len(d.Src) != op.SrcCount() {
		bd.errorf(diag.ManOperandCount, "%s: %s takes %d source(s), got %d", where, op, op.SrcCount(), len(d.Src))
		return
	}
	srcs := make([]shader.SymbolRef, 0, len(d.Src))
	valid := true
	for _, text := range d.Src {
		ref, ok := bd.operand(where, text)
		valid = valid && ok
		srcs = append(srcs, ref)
	}
	if !valid {
		return
	}
	// the marker goes in only once the statement itself is accepted
	if d.Line != nil {
		bd.b.SetSourceLine(line)
	}
	bd.b.InsertStatement(shader.NewStatement(op, dst, srcs...))
}

// operand parses "<id>[.<swizzle>]". A missing swizzle selects xyzw.
func (bd *binder) operand(where, text string) (shader.SymbolRef, bool) {
	id, swz, hasSwizzle := strings.Cut(normalize(text), ".")
	sym, ok := bd.ids[id]
	if !ok {
		if bd.absent[id] {
			bd.errorf(diag.ManAbsentOperand, "%s: %q is not available", where, id)
		} else {
			bd.errorf(diag.ManUnknownID, "%s: unknown id %q", where, id)
		}
		return shader.SymbolRef{}, false
	}
	if !hasSwizzle {
		return shader.FullRef(sym), true
	}
	s, err := shader.ParseSwizzle(swz)
	if err != nil {
		bd.errorf(diag.ManBadSwizzle, "%s: %v", where, err)
		return shader.SymbolRef{}, false
	}
	return shader.Ref(sym, s), true
}
