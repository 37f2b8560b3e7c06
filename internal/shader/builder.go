package shader

// Builder collects the symbols, side tables and statements of one shader.
type Builder struct {
	symbols []Symbol

	inputSemantics  map[int32]SemanticInfo
	outputSemantics map[int32]SemanticInfo
	variableNames   map[int32]string
	uniformNames    map[int32]string

	// constant pools, keyed by temporary index
	floatValues map[int32]Vector4
	intValues   map[int32]IntVector4
	boolValues  map[int32]BoolVector4

	metadata   map[MetadataKind]uint32
	statements []Statement
	source     string

	inputIndex    uint32
	outputIndex   uint32
	variableIndex uint32
	// shared by uniforms, temporaries and constants
	tempIndex uint32
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		inputSemantics:  make(map[int32]SemanticInfo),
		outputSemantics: make(map[int32]SemanticInfo),
		variableNames:   make(map[int32]string),
		uniformNames:    make(map[int32]string),
		floatValues:     make(map[int32]Vector4),
		intValues:       make(map[int32]IntVector4),
		boolValues:      make(map[int32]BoolVector4),
		metadata:        make(map[MetadataKind]uint32),
	}
}

// Symbols returns every symbol in creation order.
// The returned slice belongs to the builder and must not be modified.
func (b *Builder) Symbols() []Symbol {
	return b.symbols
}

// InputSemantic returns the semantic an input symbol was created with.
func (b *Builder) InputSemantic(sym Symbol) (SemanticInfo, error) {
	return lookupSide(b.inputSemantics, sym, LocationInput, "InputSemantic")
}

// OutputSemantic returns the semantic an output symbol was created with.
func (b *Builder) OutputSemantic(sym Symbol) (SemanticInfo, error) {
	return lookupSide(b.outputSemantics, sym, LocationOutput, "OutputSemantic")
}

// VariableName returns the declared name of a variable symbol.
func (b *Builder) VariableName(sym Symbol) (string, error) {
	return lookupSide(b.variableNames, sym, LocationVariable, "VariableName")
}

// UniformName returns the declared name of a uniform symbol.
func (b *Builder) UniformName(sym Symbol) (string, error) {
	return lookupSide(b.uniformNames, sym, LocationUniform, "UniformName")
}

func lookupSide[V any](table map[int32]V, sym Symbol, want Location, op string) (V, error) {
	var zero V
	if sym.Location != want {
		return zero, violation(op, ErrLocationMismatch, "want %s, got %s", want, sym)
	}
	v, ok := table[sym.Index]
	if !ok {
		return zero, violation(op, ErrMissingSideData, "%s", sym)
	}
	return v, nil
}

// TemporaryValue returns the literal of a float4 temporary. Temporaries not
// created through CreateConstant read as the zero vector.
func (b *Builder) TemporaryValue(sym Symbol) (Vector4, error) {
	if err := checkTemporary(sym, "TemporaryValue", sym.Type == TypeFloat4); err != nil {
		return Vector4{}, err
	}
	return b.floatValues[sym.Index], nil
}

// TemporaryValueInt returns the literal of an integer temporary (int4, uint4,
// ushort4 or uchar4), or the zero vector.
func (b *Builder) TemporaryValueInt(sym Symbol) (IntVector4, error) {
	if err := checkTemporary(sym, "TemporaryValueInt", sym.Type.IsIntegerVector()); err != nil {
		return IntVector4{}, err
	}
	return b.intValues[sym.Index], nil
}

// TemporaryValueBool returns the literal of a bool4 temporary, or the zero vector.
func (b *Builder) TemporaryValueBool(sym Symbol) (BoolVector4, error) {
	if err := checkTemporary(sym, "TemporaryValueBool", sym.Type == TypeBool4); err != nil {
		return BoolVector4{}, err
	}
	return b.boolValues[sym.Index], nil
}

func checkTemporary(sym Symbol, op string, typeOK bool) error {
	if sym.Location != LocationTemporary {
		return violation(op, ErrLocationMismatch, "want %s, got %s", LocationTemporary, sym)
	}
	if !typeOK {
		return violation(op, ErrTypeMismatch, "%s", sym)
	}
	return nil
}

// IsConstant reports whether sym was created by one of the constant factories.
func (b *Builder) IsConstant(sym Symbol) bool {
	if sym.Location != LocationTemporary {
		return false
	}
	switch {
	case sym.Type == TypeFloat4:
		_, ok := b.floatValues[sym.Index]
		return ok
	case sym.Type == TypeBool4:
		_, ok := b.boolValues[sym.Index]
		return ok
	case sym.Type.IsIntegerVector():
		_, ok := b.intValues[sym.Index]
		return ok
	}
	return false
}

// Source returns the text last stored by SetSource. Nothing checks that it
// matches the current statements.
func (b *Builder) Source() string {
	return b.source
}

// SetSource memoizes backend output.
func (b *Builder) SetSource(source string) {
	b.source = source
}
