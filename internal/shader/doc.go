// Package shader holds the intermediate representation that the expression
// layer populates and that backend generators translate.
//
// # Model
//
// A Builder owns every piece of state produced while a shader is written:
//
//   - Symbols: typed handles identified by (Location, Index). Factories are
//     the only way to obtain them; each one appends to a flat, creation-ordered
//     list that backends iterate to emit declarations.
//   - Side tables: semantics for inputs/outputs, names for variables and
//     uniforms, literal values for constant temporaries. They are keyed by
//     symbol index and scoped to the builder.
//   - Metadata: shader-wide integer properties (workgroup sizing).
//   - Statements: the ordered instruction stream, including source-line
//     markers used to attribute diagnostics.
//   - Source: a memo slot for the text a backend produced.
//
// Symbols are plain values. They carry no reference to the builder that made
// them, so every accessor is a Builder method taking the symbol as argument.
//
// # Contracts
//
// Misuse (reading a name off a temporary, composing an unsupported swizzle
// pair, writing through a non-mask swizzle) is a programming error. With the
// nuanceurdebug build tag the violation panics on the spot; otherwise the
// accessor returns a *ContractError and the caller decides.
//
// # Concurrency
//
// Construction is single-threaded. Once built, a Builder may be read by any
// number of goroutines as long as nobody mutates it.
package shader
