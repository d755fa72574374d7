package diagnostic

import (
	"errors"
	"fmt"
	"go/token"
	"sort"
	"strings"

	"errgen/internal/common"
)

// Diagnostics holds all diagnostic information from inspection and resolution.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Location identifies what a diagnostic refers to.
type Location struct {
	// Subject is the error type (struct name or enum interface name).
	Subject string
	// Variant is the variant type name, if any.
	Variant string
	// Field is the field name, if any.
	Field string
	// Pos is the position in the file set the package was loaded with.
	Pos token.Pos
	// Position is Pos resolved against that file set.
	Position token.Position
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	Location
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticWarning DiagnosticSeverity = iota + 1
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message string, loc Location) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  message,
		Location: loc,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message string, loc Location) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Location: loc,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Sort orders errors and warnings by file position, keeping the insertion
// order of diagnostics without a position.
func (d *Diagnostics) Sort() {
	less := func(list []Diagnostic) func(i, j int) bool {
		return func(i, j int) bool {
			a, b := list[i].Position, list[j].Position
			if a.Filename != b.Filename {
				return a.Filename < b.Filename
			}

			if a.Line != b.Line {
				return a.Line < b.Line
			}

			return a.Column < b.Column
		}
	}

	sort.SliceStable(d.Errors, less(d.Errors))
	sort.SliceStable(d.Warnings, less(d.Warnings))
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "\n"))
}

// String returns a formatted diagnostic string:
//
//	errors.go:12:2: [NotFound.Key] [unknown_key] unknown key "desc2"
func (d Diagnostic) String() string {
	var prefix []string
	if d.Position.IsValid() {
		prefix = append(prefix, d.Position.String()+":")
	}

	if path := d.Path(); path != "" {
		prefix = append(prefix, "["+path+"]")
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + " " + msg
	}

	return msg
}

// Path joins the non-empty parts of the location with dots.
func (l Location) Path() string {
	var parts []string

	for _, p := range []string{l.Subject, l.Variant, l.Field} {
		if p != "" && (len(parts) == 0 || parts[len(parts)-1] != p) {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ".")
}
