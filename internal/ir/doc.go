// Package ir provides the foundation types for sieve filter expressions.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Contents:
//   - Literal: the right-hand side of a condition (integer, decimal, text, list)
//   - NativeValue: a field's value inside a data record
//   - FieldKind, Operator, Mode: the keys of the dispatch matrix
//   - FieldDescriptor, Registry, Record: the collaborator contracts
//   - Condition: the parsed, immutable condition tree
//   - Error: the single error type returned by every layer
//
// Key design constraints:
//   - Sealed interfaces (marker methods) so type switches are exhaustive
//   - Conditions and literals are never mutated after construction
//   - A false match is a successful result, never an error
package ir
