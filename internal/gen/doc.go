// Package gen emits the methods of annotated error types.
//
// Generation uses text/template and golang.org/x/tools/imports, which formats
// the output and drops imports no method needs. Each package gets a single
// file, errors_errgen.go by default, holding per variant:
//   - Error, returning the resolved message
//   - Format, printing the debug form for %+v
//   - Unwrap, when the variant has a cause field
//   - the sealing method of the enum interface, when it declares one
//   - compile-time assertions that the variant implements the enum interface
//     (or error) and fmt.Formatter
package gen
