// Package plan resolves inspected subjects into a Plan consumed by code
// generation.
//
// Resolution pipeline:
//  1. Analyze packages → subjects, variants, fields
//  2. For each variant, apply the fallback chain
//     variant → root → project defaults → display
//  3. Resolve each field verb: fmt tag first, then the same chain
//  4. Synthesize the Error message (desc, display, debug or custom template)
//     and the debug form printed for %+v
//  5. Emit diagnostics (templates referencing missing fields)
package plan
