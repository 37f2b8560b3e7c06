package shader

import "fmt"

// Location selects the namespace a symbol lives in and which side tables apply to it.
type Location uint8

const (
	// LocationNone marks the absent symbol.
	LocationNone Location = iota
	// LocationInput is a stage input bound to a semantic.
	LocationInput
	// LocationOutput is a stage output bound to a semantic.
	LocationOutput
	// LocationUniform is a named resource bound to a unit.
	LocationUniform
	// LocationVariable is a named local variable.
	LocationVariable
	// LocationTemporary is an unnamed intermediate, possibly holding a constant.
	LocationTemporary
	// LocationTexture is a texture, image or subpass input bound to a unit.
	LocationTexture
)

func (l Location) String() string {
	switch l {
	case LocationNone:
		return "none"
	case LocationInput:
		return "input"
	case LocationOutput:
		return "output"
	case LocationUniform:
		return "uniform"
	case LocationVariable:
		return "variable"
	case LocationTemporary:
		return "temporary"
	case LocationTexture:
		return "texture"
	default:
		return fmt.Sprintf("Location(%d)", uint8(l))
	}
}

// Type is the value type of a symbol.
type Type uint8

const (
	TypeNone Type = iota
	TypeFloat4
	TypeInt4
	TypeUint4
	TypeBool4
	TypeUshort4
	TypeUchar4
	TypeMatrix4x4
	TypeTexture2D
	TypeImage2DUint
	TypeSubpassInput
	TypeSubpassInputUint
	TypeArrayUint
	TypeArrayUshort
	TypeArrayUchar
)

var typeNames = [...]string{
	TypeNone:             "none",
	TypeFloat4:           "float4",
	TypeInt4:             "int4",
	TypeUint4:            "uint4",
	TypeBool4:            "bool4",
	TypeUshort4:          "ushort4",
	TypeUchar4:           "uchar4",
	TypeMatrix4x4:        "matrix",
	TypeTexture2D:        "texture2d",
	TypeImage2DUint:      "image2d_uint",
	TypeSubpassInput:     "subpass_input",
	TypeSubpassInputUint: "subpass_input_uint",
	TypeArrayUint:        "array_uint",
	TypeArrayUshort:      "array_ushort",
	TypeArrayUchar:       "array_uchar",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType maps the lower-case spelling used by String back to a Type.
func ParseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if i != int(TypeNone) && n == name {
			return Type(i), true
		}
	}
	return TypeNone, false
}

// IsIntegerVector reports whether values of t live in the integer constant pool.
func (t Type) IsIntegerVector() bool {
	switch t {
	case TypeInt4, TypeUint4, TypeUshort4, TypeUchar4:
		return true
	}
	return false
}

// Attribute carries layout flags on array uniforms.
type Attribute uint32

const (
	// AttributeCoherent requests coherent memory access on the bound buffer.
	AttributeCoherent Attribute = 1 << iota
	// AttributeReadOnly marks a buffer the shader never writes.
	AttributeReadOnly
	// AttributeWriteOnly marks a buffer the shader never reads.
	AttributeWriteOnly
)

// NoIndex is the index carried by symbols that are identified by unit alone.
const NoIndex int32 = -1

// Symbol is a typed handle produced by a Builder factory. The zero value is
// the absent symbol returned by the optional factories.
type Symbol struct {
	Location   Location  `msgpack:"loc"`
	Type       Type      `msgpack:"type"`
	Index      int32     `msgpack:"index"`
	Unit       uint32    `msgpack:"unit,omitempty"`
	Attributes Attribute `msgpack:"attrs,omitempty"`
}

// IsValid reports whether the symbol came from a factory.
func (s Symbol) IsValid() bool { return s.Location != LocationNone }

// HasIndex reports whether the symbol occupies a slot in an index namespace.
func (s Symbol) HasIndex() bool { return s.IsValid() && s.Index != NoIndex }

func (s Symbol) String() string {
	if !s.IsValid() {
		return "<absent>"
	}
	if s.Location == LocationTexture {
		if s.Index == NoIndex {
			return fmt.Sprintf("%s %s@%d", s.Location, s.Type, s.Unit)
		}
		return fmt.Sprintf("%s %s@%d[%d]", s.Location, s.Type, s.Unit, s.Index)
	}
	return fmt.Sprintf("%s#%d %s", s.Location, s.Index, s.Type)
}

// Semantic is the fixed-function role an input or output binds to.
type Semantic uint8

const (
	SemanticNone Semantic = iota
	SemanticPosition
	SemanticTexcoord
	SemanticSystemColor
	SemanticSystemDepth
	SemanticSystemPosition
	SemanticSystemPointSize
	SemanticSystemGIID
	SemanticSystemVertexIndex
	SemanticSystemInstanceIndex
)

var semanticNames = [...]string{
	SemanticNone:                "none",
	SemanticPosition:            "position",
	SemanticTexcoord:            "texcoord",
	SemanticSystemColor:         "system_color",
	SemanticSystemDepth:         "system_depth",
	SemanticSystemPosition:      "system_position",
	SemanticSystemPointSize:     "system_point_size",
	SemanticSystemGIID:          "system_giid",
	SemanticSystemVertexIndex:   "system_vertex_index",
	SemanticSystemInstanceIndex: "system_instance_index",
}

func (s Semantic) String() string {
	if int(s) < len(semanticNames) {
		return semanticNames[s]
	}
	return fmt.Sprintf("Semantic(%d)", uint8(s))
}

// ParseSemantic maps the spelling used by String back to a Semantic.
func ParseSemantic(name string) (Semantic, bool) {
	for i, n := range semanticNames {
		if n == name {
			return Semantic(i), true
		}
	}
	return SemanticNone, false
}

// SemanticInfo pairs a semantic with its index (texcoord 0, texcoord 1, ...).
type SemanticInfo struct {
	Semantic Semantic `msgpack:"sem"`
	Index    uint32   `msgpack:"idx"`
}

func (s SemanticInfo) String() string {
	return fmt.Sprintf("%s[%d]", s.Semantic, s.Index)
}
