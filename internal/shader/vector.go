package shader

import "fmt"

// Vector4 is a float literal stored for a constant temporary.
type Vector4 [4]float32

// IntVector4 is an integer literal. Signed and unsigned constants share it;
// unsigned values are stored with their bit pattern preserved.
type IntVector4 [4]int32

// BoolVector4 is a boolean literal.
type BoolVector4 [4]bool

// Uint reinterprets the stored lanes as unsigned values.
func (v IntVector4) Uint() [4]uint32 {
	return [4]uint32{uint32(v[0]), uint32(v[1]), uint32(v[2]), uint32(v[3])}
}

func (v Vector4) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", v[0], v[1], v[2], v[3])
}

func (v IntVector4) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", v[0], v[1], v[2], v[3])
}

func (v BoolVector4) String() string {
	return fmt.Sprintf("(%t, %t, %t, %t)", v[0], v[1], v[2], v[3])
}
