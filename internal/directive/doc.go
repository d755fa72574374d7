// Package directive parses the errgen annotation surface.
//
// Annotations are doc-comment directives attached to type declarations and
// struct tags attached to fields:
//
//	//errgen:error desc="Storage failure" fmt=debug
//	type (
//		StorageError interface{ error }
//
//		//errgen:variant desc="Key not found" fmt=display
//		NotFound struct {
//			Key  string
//			Size int `fmt:"05d"`
//		}
//	)
//
// # Keys
//
//   - desc: a Go string literal, used verbatim as the error message
//   - fmt: display | debug | a Go string literal holding a message template
//
// Each key may appear at most once per directive; unknown keys are rejected.
// Field tags accept display, debug or a fmt verb ("%05d", "05d", "5").
//
// A single-value variant (type Retry int) has no struct field to tag, so its
// value is always dumped with %+v in debug form. Pick another verb with a
// template placeholder instead: fmt="retry in {0:d}s".
//
// # Templates
//
// Custom templates reference fields by name ({Key}) or, for single-value
// variants, by position ({0}). A placeholder may carry its own verb
// ({Size:05d}). Literal braces are written as {{ and }}.
package directive
