package shader

import (
	"fmt"

	"fortio.org/safecast"
)

// next hands out the current value of counter and advances it.
func next(counter *uint32) int32 {
	idx, err := safecast.Conv[int32](*counter)
	if err != nil {
		panic(fmt.Errorf("shader symbol index overflow: %w", err))
	}
	*counter++
	return idx
}

func (b *Builder) push(sym Symbol) Symbol {
	b.symbols = append(b.symbols, sym)
	return sym
}

func (b *Builder) newInput(typ Type, semantic Semantic, semanticIndex uint32) Symbol {
	sym := b.push(Symbol{Location: LocationInput, Type: typ, Index: next(&b.inputIndex)})
	b.inputSemantics[sym.Index] = SemanticInfo{Semantic: semantic, Index: semanticIndex}
	return sym
}

func (b *Builder) newOutput(typ Type, semantic Semantic, semanticIndex uint32) Symbol {
	sym := b.push(Symbol{Location: LocationOutput, Type: typ, Index: next(&b.outputIndex)})
	b.outputSemantics[sym.Index] = SemanticInfo{Semantic: semantic, Index: semanticIndex}
	return sym
}

func (b *Builder) newVariable(typ Type, name string) Symbol {
	sym := b.push(Symbol{Location: LocationVariable, Type: typ, Index: next(&b.variableIndex)})
	b.variableNames[sym.Index] = name
	return sym
}

func (b *Builder) newTemporary(typ Type) Symbol {
	return b.push(Symbol{Location: LocationTemporary, Type: typ, Index: next(&b.tempIndex)})
}

func (b *Builder) newUniform(typ Type, name string, unit uint32, attrs Attribute) Symbol {
	sym := b.push(Symbol{
		Location:   LocationUniform,
		Type:       typ,
		Index:      next(&b.tempIndex),
		Unit:       unit,
		Attributes: attrs,
	})
	b.uniformNames[sym.Index] = name
	return sym
}

func (b *Builder) newTexture(typ Type, unit uint32, index int32) Symbol {
	return b.push(Symbol{Location: LocationTexture, Type: typ, Index: index, Unit: unit})
}

// CreateInput declares a float4 stage input.
func (b *Builder) CreateInput(semantic Semantic, semanticIndex uint32) Symbol {
	return b.newInput(TypeFloat4, semantic, semanticIndex)
}

// CreateInputInt declares an int4 stage input.
func (b *Builder) CreateInputInt(semantic Semantic, semanticIndex uint32) Symbol {
	return b.newInput(TypeInt4, semantic, semanticIndex)
}

// CreateInputUint declares a uint4 stage input.
func (b *Builder) CreateInputUint(semantic Semantic, semanticIndex uint32) Symbol {
	return b.newInput(TypeUint4, semantic, semanticIndex)
}

// CreateOutput declares a float4 stage output.
func (b *Builder) CreateOutput(semantic Semantic, semanticIndex uint32) Symbol {
	return b.newOutput(TypeFloat4, semantic, semanticIndex)
}

// CreateOutputUint declares a uint4 stage output.
func (b *Builder) CreateOutputUint(semantic Semantic, semanticIndex uint32) Symbol {
	return b.newOutput(TypeUint4, semantic, semanticIndex)
}

func (b *Builder) CreateVariableFloat(name string) Symbol { return b.newVariable(TypeFloat4, name) }
func (b *Builder) CreateVariableInt(name string) Symbol   { return b.newVariable(TypeInt4, name) }
func (b *Builder) CreateVariableUint(name string) Symbol  { return b.newVariable(TypeUint4, name) }
func (b *Builder) CreateVariableBool(name string) Symbol  { return b.newVariable(TypeBool4, name) }

func (b *Builder) CreateTemporary() Symbol       { return b.newTemporary(TypeFloat4) }
func (b *Builder) CreateTemporaryBool() Symbol   { return b.newTemporary(TypeBool4) }
func (b *Builder) CreateTemporaryInt() Symbol    { return b.newTemporary(TypeInt4) }
func (b *Builder) CreateTemporaryUint() Symbol   { return b.newTemporary(TypeUint4) }
func (b *Builder) CreateTemporaryUshort() Symbol { return b.newTemporary(TypeUshort4) }
func (b *Builder) CreateTemporaryUchar() Symbol  { return b.newTemporary(TypeUchar4) }

// CreateConstant allocates a float4 temporary holding the given literal.
// Equal literals are not shared: every call yields a fresh symbol.
func (b *Builder) CreateConstant(v1, v2, v3, v4 float32) Symbol {
	sym := b.newTemporary(TypeFloat4)
	b.floatValues[sym.Index] = Vector4{v1, v2, v3, v4}
	return sym
}

// CreateConstantInt allocates an int4 temporary holding the given literal.
func (b *Builder) CreateConstantInt(v1, v2, v3, v4 int32) Symbol {
	sym := b.newTemporary(TypeInt4)
	b.intValues[sym.Index] = IntVector4{v1, v2, v3, v4}
	return sym
}

// CreateConstantUint allocates a uint4 temporary. The literal shares the
// integer pool, stored bit for bit.
func (b *Builder) CreateConstantUint(v1, v2, v3, v4 uint32) Symbol {
	sym := b.newTemporary(TypeUint4)
	b.intValues[sym.Index] = IntVector4{int32(v1), int32(v2), int32(v3), int32(v4)}
	return sym
}

// CreateConstantBool allocates a bool4 temporary holding the given literal.
func (b *Builder) CreateConstantBool(v1, v2, v3, v4 bool) Symbol {
	sym := b.newTemporary(TypeBool4)
	b.boolValues[sym.Index] = BoolVector4{v1, v2, v3, v4}
	return sym
}

// CreateUniformFloat4 declares a float4 uniform bound to unit.
func (b *Builder) CreateUniformFloat4(name string, unit uint32) Symbol {
	return b.newUniform(TypeFloat4, name, unit, 0)
}

// CreateUniformInt4 declares an int4 uniform bound to unit.
func (b *Builder) CreateUniformInt4(name string, unit uint32) Symbol {
	return b.newUniform(TypeInt4, name, unit, 0)
}

// CreateUniformMatrix declares a 4x4 matrix uniform bound to unit.
func (b *Builder) CreateUniformMatrix(name string, unit uint32) Symbol {
	return b.newUniform(TypeMatrix4x4, name, unit, 0)
}

// CreateUniformArrayUint declares a uint array (storage buffer) bound to unit.
func (b *Builder) CreateUniformArrayUint(name string, unit uint32, attrs Attribute) Symbol {
	return b.newUniform(TypeArrayUint, name, unit, attrs)
}

// CreateUniformArrayUshort declares a ushort array bound to unit.
func (b *Builder) CreateUniformArrayUshort(name string, unit uint32, attrs Attribute) Symbol {
	return b.newUniform(TypeArrayUshort, name, unit, attrs)
}

// CreateUniformArrayUchar declares a uchar array bound to unit.
func (b *Builder) CreateUniformArrayUchar(name string, unit uint32, attrs Attribute) Symbol {
	return b.newUniform(TypeArrayUchar, name, unit, attrs)
}

// CreateTexture2D declares a sampled 2D texture. It has no index.
func (b *Builder) CreateTexture2D(unit uint32) Symbol {
	return b.newTexture(TypeTexture2D, unit, NoIndex)
}

// CreateImage2DUint declares a uint storage image. It has no index.
func (b *Builder) CreateImage2DUint(unit uint32) Symbol {
	return b.newTexture(TypeImage2DUint, unit, NoIndex)
}

// CreateSubpassInput declares a float subpass input; index is its input
// attachment slot. Indices above math.MaxInt32 panic.
func (b *Builder) CreateSubpassInput(unit, index uint32) Symbol {
	return b.newTexture(TypeSubpassInput, unit, attachmentIndex(index))
}

// CreateSubpassInputUint declares a uint subpass input.
func (b *Builder) CreateSubpassInputUint(unit, index uint32) Symbol {
	return b.newTexture(TypeSubpassInputUint, unit, attachmentIndex(index))
}

func attachmentIndex(index uint32) int32 {
	idx, err := safecast.Conv[int32](index)
	if err != nil {
		panic(fmt.Errorf("subpass attachment index: %w", err))
	}
	return idx
}

// CreateOptionalInput is CreateInput when available is true and returns the
// absent symbol otherwise, without touching the input counter.
func (b *Builder) CreateOptionalInput(available bool, semantic Semantic, semanticIndex uint32) Symbol {
	if !available {
		return Symbol{}
	}
	return b.CreateInput(semantic, semanticIndex)
}

// CreateOptionalOutput is the output counterpart of CreateOptionalInput.
func (b *Builder) CreateOptionalOutput(available bool, semantic Semantic, semanticIndex uint32) Symbol {
	if !available {
		return Symbol{}
	}
	return b.CreateOutput(semantic, semanticIndex)
}

// CreateOptionalUniformMatrix is the matrix uniform counterpart of CreateOptionalInput.
func (b *Builder) CreateOptionalUniformMatrix(available bool, name string, unit uint32) Symbol {
	if !available {
		return Symbol{}
	}
	return b.CreateUniformMatrix(name, unit)
}
