// Package analyze provides package loading and subject extraction.
//
// It uses golang.org/x/tools/go/packages with AST and go/types
// to find errgen directives and build a model of the annotated types.
//
// Key types:
//   - Subject: an annotated struct, or an annotated type group (enum)
//   - Variant: one case of an enum, or the struct itself
//   - Field: a value carried by a variant, with its fmt tag and cause mark
//
// The Inspector works on already type-checked syntax so the same rules run
// in the CLI and in the vet analyzer.
package analyze
