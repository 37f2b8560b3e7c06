package shader

import (
	"errors"
	"fmt"
)

// Validate checks structural invariants of the statement stream:
// known ops, operand arity, operands created by this builder, write-mask
// destinations and well-formed source swizzles. It does not type-check.
func (b *Builder) Validate() error {
	known := make(map[Symbol]struct{}, len(b.symbols))
	for _, sym := range b.symbols {
		known[sym] = struct{}{}
	}

	var errs []error
	for i := range b.statements {
		if err := validateStatement(&b.statements[i], known); err != nil {
			errs = append(errs, fmt.Errorf("statement %d (%s): %w", i, b.statements[i].Op, err))
		}
	}
	return errors.Join(errs...)
}

func validateStatement(st *Statement, known map[Symbol]struct{}) error {
	if !st.Op.IsValid() {
		return errors.New("unknown op")
	}

	var errs []error
	if st.Op.HasDst() {
		switch {
		case !st.Dst.IsUsed():
			errs = append(errs, errors.New("missing destination"))
		case !isKnown(known, st.Dst.Symbol):
			errs = append(errs, fmt.Errorf("destination %s was not created by this builder", st.Dst.Symbol))
		case !IsMaskSwizzle(st.Dst.Swizzle):
			errs = append(errs, fmt.Errorf("destination swizzle %s: %w", st.Dst.Swizzle, ErrNotMask))
		}
	} else if st.Dst.IsUsed() {
		errs = append(errs, errors.New("unexpected destination"))
	}

	want := st.Op.SrcCount()
	for j, ref := range st.Src {
		if j >= want {
			if ref.IsUsed() {
				errs = append(errs, fmt.Errorf("unexpected source %d", j+1))
			}
			continue
		}
		switch {
		case !ref.IsUsed():
			errs = append(errs, fmt.Errorf("missing source %d", j+1))
		case !isKnown(known, ref.Symbol):
			errs = append(errs, fmt.Errorf("source %d %s was not created by this builder", j+1, ref.Symbol))
		case !ref.Swizzle.IsValid():
			errs = append(errs, fmt.Errorf("source %d has malformed swizzle %s", j+1, ref.Swizzle))
		}
	}
	return errors.Join(errs...)
}

func isKnown(known map[Symbol]struct{}, sym Symbol) bool {
	_, ok := known[sym]
	return ok
}
