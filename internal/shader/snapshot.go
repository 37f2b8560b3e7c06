package shader

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"fortio.org/safecast"
)

// Snapshot is a plain-data copy of a Builder, suitable for serialization.
// Side tables are flattened into index-sorted entry lists so equal builders
// produce equal snapshots.
type Snapshot struct {
	Symbols         []Symbol        `msgpack:"symbols"`
	InputSemantics  []SemanticEntry `msgpack:"in_sem"`
	OutputSemantics []SemanticEntry `msgpack:"out_sem"`
	VariableNames   []NameEntry     `msgpack:"var_names"`
	UniformNames    []NameEntry     `msgpack:"uni_names"`
	FloatValues     []FloatEntry    `msgpack:"floats"`
	IntValues       []IntEntry      `msgpack:"ints"`
	BoolValues      []BoolEntry     `msgpack:"bools"`
	Metadata        []MetadataEntry `msgpack:"metadata"`
	Statements      []Statement     `msgpack:"statements"`
	Source          string          `msgpack:"source"`
	Counters        Counters        `msgpack:"counters"`
}

// Counters records the next index of each namespace.
type Counters struct {
	Input    uint32 `msgpack:"in"`
	Output   uint32 `msgpack:"out"`
	Variable uint32 `msgpack:"var"`
	Temp     uint32 `msgpack:"temp"`
}

// SemanticEntry and the other *Entry types are flattened side-table rows.
type SemanticEntry struct {
	Index int32        `msgpack:"i"`
	Info  SemanticInfo `msgpack:"v"`
}

type NameEntry struct {
	Index int32  `msgpack:"i"`
	Name  string `msgpack:"v"`
}

type FloatEntry struct {
	Index int32   `msgpack:"i"`
	Value Vector4 `msgpack:"v"`
}

type IntEntry struct {
	Index int32      `msgpack:"i"`
	Value IntVector4 `msgpack:"v"`
}

type BoolEntry struct {
	Index int32       `msgpack:"i"`
	Value BoolVector4 `msgpack:"v"`
}

type MetadataEntry struct {
	Kind  MetadataKind `msgpack:"k"`
	Value uint32       `msgpack:"v"`
}

func flatten[V, E any](table map[int32]V, mk func(int32, V) E) []E {
	keys := slices.Sorted(maps.Keys(table))
	out := make([]E, 0, len(keys))
	for _, k := range keys {
		out = append(out, mk(k, table[k]))
	}
	return out
}

// Snapshot copies the builder state.
func (b *Builder) Snapshot() Snapshot {
	meta := make([]MetadataEntry, 0, len(b.metadata))
	for _, k := range slices.Sorted(maps.Keys(b.metadata)) {
		meta = append(meta, MetadataEntry{Kind: k, Value: b.metadata[k]})
	}
	return Snapshot{
		Symbols: slices.Clone(b.symbols),
		InputSemantics: flatten(b.inputSemantics, func(i int32, v SemanticInfo) SemanticEntry {
			return SemanticEntry{Index: i, Info: v}
		}),
		OutputSemantics: flatten(b.outputSemantics, func(i int32, v SemanticInfo) SemanticEntry {
			return SemanticEntry{Index: i, Info: v}
		}),
		VariableNames: flatten(b.variableNames, func(i int32, v string) NameEntry {
			return NameEntry{Index: i, Name: v}
		}),
		UniformNames: flatten(b.uniformNames, func(i int32, v string) NameEntry {
			return NameEntry{Index: i, Name: v}
		}),
		FloatValues: flatten(b.floatValues, func(i int32, v Vector4) FloatEntry {
			return FloatEntry{Index: i, Value: v}
		}),
		IntValues: flatten(b.intValues, func(i int32, v IntVector4) IntEntry {
			return IntEntry{Index: i, Value: v}
		}),
		BoolValues: flatten(b.boolValues, func(i int32, v BoolVector4) BoolEntry {
			return BoolEntry{Index: i, Value: v}
		}),
		Metadata:   meta,
		Statements: slices.Clone(b.statements),
		Source:     b.source,
		Counters: Counters{
			Input:    b.inputIndex,
			Output:   b.outputIndex,
			Variable: b.variableIndex,
			Temp:     b.tempIndex,
		},
	}
}

// Restore rebuilds a Builder from snap. Every side-table entry must point at
// a symbol of the matching location, and counters must lie past every index
// already handed out, so factories keep producing fresh indices.
func Restore(snap *Snapshot) (*Builder, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	b := NewBuilder()
	b.symbols = slices.Clone(snap.Symbols)
	b.statements = slices.Clone(snap.Statements)
	b.source = snap.Source
	b.inputIndex = snap.Counters.Input
	b.outputIndex = snap.Counters.Output
	b.variableIndex = snap.Counters.Variable
	b.tempIndex = snap.Counters.Temp

	indices := make(map[Location]map[int32]Type)
	var errs []error
	for _, sym := range b.symbols {
		if !sym.IsValid() {
			errs = append(errs, errors.New("absent symbol in symbol list"))
			continue
		}
		if indices[sym.Location] == nil {
			indices[sym.Location] = make(map[int32]Type)
		}
		indices[sym.Location][sym.Index] = sym.Type
		if err := checkCounter(sym, snap.Counters); err != nil {
			errs = append(errs, err)
		}
	}

	has := func(loc Location, idx int32) bool {
		_, ok := indices[loc][idx]
		return ok
	}
	typeOf := func(idx int32) Type { return indices[LocationTemporary][idx] }

	for _, e := range snap.InputSemantics {
		if !has(LocationInput, e.Index) {
			errs = append(errs, fmt.Errorf("input semantic for unknown index %d", e.Index))
		}
		b.inputSemantics[e.Index] = e.Info
	}
	for _, e := range snap.OutputSemantics {
		if !has(LocationOutput, e.Index) {
			errs = append(errs, fmt.Errorf("output semantic for unknown index %d", e.Index))
		}
		b.outputSemantics[e.Index] = e.Info
	}
	for _, e := range snap.VariableNames {
		if !has(LocationVariable, e.Index) {
			errs = append(errs, fmt.Errorf("variable name for unknown index %d", e.Index))
		}
		b.variableNames[e.Index] = e.Name
	}
	for _, e := range snap.UniformNames {
		if !has(LocationUniform, e.Index) {
			errs = append(errs, fmt.Errorf("uniform name for unknown index %d", e.Index))
		}
		b.uniformNames[e.Index] = e.Name
	}
	for _, e := range snap.FloatValues {
		if !has(LocationTemporary, e.Index) || typeOf(e.Index) != TypeFloat4 {
			errs = append(errs, fmt.Errorf("float constant for unknown temporary %d", e.Index))
		}
		b.floatValues[e.Index] = e.Value
	}
	for _, e := range snap.IntValues {
		if !has(LocationTemporary, e.Index) || !typeOf(e.Index).IsIntegerVector() {
			errs = append(errs, fmt.Errorf("integer constant for unknown temporary %d", e.Index))
		}
		b.intValues[e.Index] = e.Value
	}
	for _, e := range snap.BoolValues {
		if !has(LocationTemporary, e.Index) || typeOf(e.Index) != TypeBool4 {
			errs = append(errs, fmt.Errorf("bool constant for unknown temporary %d", e.Index))
		}
		b.boolValues[e.Index] = e.Value
	}
	for _, e := range snap.Metadata {
		b.metadata[e.Kind] = e.Value
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return b, nil
}

func checkCounter(sym Symbol, c Counters) error {
	var limit uint32
	switch sym.Location {
	case LocationInput:
		limit = c.Input
	case LocationOutput:
		limit = c.Output
	case LocationVariable:
		limit = c.Variable
	case LocationUniform, LocationTemporary:
		limit = c.Temp
	default:
		return nil
	}
	idx, err := safecast.Conv[uint32](sym.Index)
	if err != nil || idx >= limit {
		return fmt.Errorf("%s index %d not below counter %d", sym.Location, sym.Index, limit)
	}
	return nil
}
