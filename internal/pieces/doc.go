// Package pieces defines the intermediate representation produced by the
// query-expression analyzer.
//
// A query expression such as
//
//	People.Where(p => p.Age > 18).Select(p => p.Name)
//
// arrives as a tree of raw pieces: call, lambda, parameter-reference, quote
// and member-access operations over constants. Analysis consumes every raw
// node and replaces it with a resolved piece:
//
//	[raw pieces] → analyzer → [resolved pieces + Query] → target emitter (elsewhere)
//
// SEALED INTERFACE:
//
// Piece is sealed with a marker method. Only the types in this package
// implement it, so type switches over Piece can be exhaustive:
//
//	switch p := piece.(type) {
//	case *Constant:
//	case *Operation:
//	case *Table, *Column, *Association, *Parameter:
//	}
//
// INVARIANT:
//
// Every piece reachable from a fully analyzed root is a Constant, one of the
// resolved leaves (Table, Column, Association, Parameter), an OpAggregate
// operation, or an operator operation whose operands are themselves fully
// analyzed. Validate checks this.
//
// SCOPING:
//
// BuilderContext carries formal-parameter bindings and the Query being
// assembled. Clone copies the bindings and shares the Query, so bindings made
// inside a quoted sub-expression vanish once it has been analyzed while its
// filters and projection remain.
package pieces
