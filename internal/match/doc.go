// Package match suggests the closest known name for a misspelled directive,
// option key or template field.
//
// Names are folded (lowercased, with _ - and spaces dropped) and scored by
// their edit distance relative to the longer name.
package match
