package shader

import (
	"fmt"
	"strings"
)

// Component names one lane of a four-component vector.
type Component uint8

const (
	// ComponentX is the first lane.
	ComponentX Component = iota
	// ComponentY is the second lane.
	ComponentY
	// ComponentZ is the third lane.
	ComponentZ
	// ComponentW is the fourth lane.
	ComponentW
)

const componentLetters = "xyzw"

func (c Component) String() string {
	if c > ComponentW {
		return "?"
	}
	return componentLetters[c : c+1]
}

// Swizzle is a component-selector pattern of one to four components.
//
// Layout: bits 8..10 hold the length, bits 0..7 hold up to four 2-bit
// component indices, first component in the lowest bits. The zero value has
// length zero and is not a valid pattern.
type Swizzle uint16

const (
	cx = 0
	cy = 1
	cz = 2
	cw = 3
)

// Named patterns. Only the ones the builder and its callers refer to are
// listed; ParseSwizzle and MakeSwizzle produce the rest.
const (
	SwizzleX Swizzle = 1<<8 | cx
	SwizzleY Swizzle = 1<<8 | cy
	SwizzleZ Swizzle = 1<<8 | cz
	SwizzleW Swizzle = 1<<8 | cw

	SwizzleXX Swizzle = 2<<8 | cx | cx<<2
	SwizzleXY Swizzle = 2<<8 | cx | cy<<2
	SwizzleXZ Swizzle = 2<<8 | cx | cz<<2
	SwizzleXW Swizzle = 2<<8 | cx | cw<<2
	SwizzleYX Swizzle = 2<<8 | cy | cx<<2
	SwizzleYY Swizzle = 2<<8 | cy | cy<<2
	SwizzleYZ Swizzle = 2<<8 | cy | cz<<2
	SwizzleYW Swizzle = 2<<8 | cy | cw<<2
	SwizzleZZ Swizzle = 2<<8 | cz | cz<<2
	SwizzleZW Swizzle = 2<<8 | cz | cw<<2
	SwizzleWW Swizzle = 2<<8 | cw | cw<<2

	SwizzleXXX Swizzle = 3<<8 | cx | cx<<2 | cx<<4
	SwizzleYYY Swizzle = 3<<8 | cy | cy<<2 | cy<<4
	SwizzleZZZ Swizzle = 3<<8 | cz | cz<<2 | cz<<4
	SwizzleWWW Swizzle = 3<<8 | cw | cw<<2 | cw<<4
	SwizzleXYZ Swizzle = 3<<8 | cx | cy<<2 | cz<<4
	SwizzleXYW Swizzle = 3<<8 | cx | cy<<2 | cw<<4
	SwizzleXZW Swizzle = 3<<8 | cx | cz<<2 | cw<<4
	SwizzleYZW Swizzle = 3<<8 | cy | cz<<2 | cw<<4

	SwizzleXXXX Swizzle = 4<<8 | cx | cx<<2 | cx<<4 | cx<<6
	SwizzleYYYY Swizzle = 4<<8 | cy | cy<<2 | cy<<4 | cy<<6
	SwizzleZZZZ Swizzle = 4<<8 | cz | cz<<2 | cz<<4 | cz<<6
	SwizzleWWWW Swizzle = 4<<8 | cw | cw<<2 | cw<<4 | cw<<6
	SwizzleXYZW Swizzle = 4<<8 | cx | cy<<2 | cz<<4 | cw<<6
)

// MakeSwizzle packs the given components into a pattern.
func MakeSwizzle(components ...Component) (Swizzle, bool) {
	if len(components) == 0 || len(components) > 4 {
		return 0, false
	}
	s := Swizzle(len(components)) << 8
	for i, c := range components {
		if c > ComponentW {
			return 0, false
		}
		s |= Swizzle(c) << (2 * i)
	}
	return s, true
}

// ParseSwizzle reads a pattern written with the letters x, y, z and w
// (case-insensitive). The rgba spelling is accepted as well.
func ParseSwizzle(text string) (Swizzle, error) {
	if text == "" || len(text) > 4 {
		return 0, fmt.Errorf("invalid swizzle %q: expected 1 to 4 components", text)
	}
	components := make([]Component, 0, len(text))
	for _, r := range strings.ToLower(text) {
		switch r {
		case 'x', 'r':
			components = append(components, ComponentX)
		case 'y', 'g':
			components = append(components, ComponentY)
		case 'z', 'b':
			components = append(components, ComponentZ)
		case 'w', 'a':
			components = append(components, ComponentW)
		default:
			return 0, fmt.Errorf("invalid swizzle %q: unknown component %q", text, r)
		}
	}
	s, ok := MakeSwizzle(components...)
	if !ok {
		return 0, fmt.Errorf("invalid swizzle %q", text)
	}
	return s, nil
}

// Len returns the number of selected components, or 0 for a malformed value.
func (s Swizzle) Len() int {
	if !s.IsValid() {
		return 0
	}
	return int(s >> 8)
}

// IsValid reports whether s encodes a pattern of one to four components.
func (s Swizzle) IsValid() bool {
	n := int(s >> 8)
	if n < 1 || n > 4 {
		return false
	}
	// lanes past the length must stay clear so each pattern has one encoding
	return n == 4 || s&(0xFF<<(2*n))&0xFF == 0
}

// Component returns the i-th selected component.
func (s Swizzle) Component(i int) Component {
	return Component((s >> (2 * i)) & 0x3)
}

// Components unpacks the pattern.
func (s Swizzle) Components() []Component {
	n := s.Len()
	out := make([]Component, n)
	for i := range n {
		out[i] = s.Component(i)
	}
	return out
}

func (s Swizzle) String() string {
	n := s.Len()
	if n == 0 {
		return fmt.Sprintf("Swizzle(%#x)", uint16(s))
	}
	var b strings.Builder
	for i := range n {
		b.WriteString(s.Component(i).String())
	}
	return b.String()
}

// AllSwizzles enumerates every valid pattern: by length, then
// lexicographically with the first component varying slowest.
func AllSwizzles() []Swizzle {
	out := make([]Swizzle, 0, 4+16+64+256)
	for n := 1; n <= 4; n++ {
		comps := make([]Component, n)
		for i := 0; i < 1<<(2*n); i++ {
			rem := i
			for j := n - 1; j >= 0; j-- {
				comps[j] = Component(rem & 0x3)
				rem >>= 2
			}
			s, _ := MakeSwizzle(comps...)
			out = append(out, s)
		}
	}
	return out
}

// IsIdentitySwizzle reports whether s reads a prefix of the vector in order:
// x, xy, xyz or xyzw. Such a read can be dropped from generated code.
func IsIdentitySwizzle(s Swizzle) bool {
	switch s {
	case SwizzleX, SwizzleXY, SwizzleXYZ, SwizzleXYZW:
		return true
	}
	return false
}

// IsMaskSwizzle reports whether s is usable as a write mask: strictly
// increasing components with no repetition.
func IsMaskSwizzle(s Swizzle) bool {
	n := s.Len()
	if n == 0 {
		return false
	}
	for i := 1; i < n; i++ {
		if s.Component(i) <= s.Component(i-1) {
			return false
		}
	}
	return true
}

// CheckMaskSwizzle enforces the write-mask contract on a destination swizzle.
func CheckMaskSwizzle(s Swizzle) error {
	if IsMaskSwizzle(s) {
		return nil
	}
	return violation("CheckMaskSwizzle", ErrNotMask, "%s", s)
}

type swizzlePair struct{ outer, inner Swizzle }

// swizzleCompositions lists every non-identity composition the expression
// layer produces. Extend it row by row; there is no general rule behind it.
var swizzleCompositions = map[swizzlePair]Swizzle{
	{SwizzleY, SwizzleXX}:  SwizzleYY,
	{SwizzleY, SwizzleXXX}: SwizzleYYY,

	{SwizzleZW, SwizzleX}:  SwizzleZ,
	{SwizzleZW, SwizzleY}:  SwizzleW,
	{SwizzleZW, SwizzleXY}: SwizzleZW,
}

// TransformSwizzle returns the swizzle c such that v.a.b == v.c, where a was
// applied first. Identity outer swizzles pass b through unchanged; any other
// pair must appear in the composition table.
func TransformSwizzle(a, b Swizzle) (Swizzle, error) {
	if IsIdentitySwizzle(a) {
		return b, nil
	}
	if c, ok := swizzleCompositions[swizzlePair{a, b}]; ok {
		return c, nil
	}
	return 0, violation("TransformSwizzle", ErrUnsupportedSwizzle, "%s then %s", a, b)
}

// MustTransformSwizzle is TransformSwizzle for callers that cannot recover.
func MustTransformSwizzle(a, b Swizzle) Swizzle {
	c, err := TransformSwizzle(a, b)
	if err != nil {
		panic(err)
	}
	return c
}
