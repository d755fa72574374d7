package analyze

import (
	"go/token"
	"go/types"

	"errgen/internal/common"
	"errgen/internal/diagnostic"
	"errgen/internal/directive"
)

// SubjectKind tells struct subjects from enum subjects.
type SubjectKind int

const (
	SubjectStruct SubjectKind = iota + 1 // a single annotated type, its own variant
	SubjectEnum                          // an annotated type group named by its interface
)

// String returns a human-readable representation of the SubjectKind.
func (k SubjectKind) String() string {
	switch k {
	case SubjectStruct:
		return "struct"
	case SubjectEnum:
		return "enum"
	default:
		return common.UnknownStr
	}
}

//go:generate go tool stringer -type=Shape -linecomment -output=shape_string.go

// Shape describes how a variant holds its values.
type Shape int

const (
	_ Shape = iota

	ShapeUnit       // unit
	ShapeNamed      // named
	ShapePositional // positional
)

// Subject is an annotated error type.
type Subject struct {
	// Name is the struct name or, for enums, the interface name.
	Name string
	Kind SubjectKind
	// Config holds the root directive options.
	Config   directive.Config
	Variants []Variant
	// Sealer is the unexported marker method declared by the enum interface,
	// implemented on every variant by the generated code.
	Sealer string
	Pos    token.Pos
}

// Variant is one case of an enum, or the struct itself.
type Variant struct {
	// Name is the type name of the variant.
	Name  string
	Shape Shape
	// Config holds the variant directive options (always empty for structs).
	Config directive.Config
	Fields []Field
	// Underlying is the converted type of a positional variant.
	Underlying types.Type
	// DeclaresSealer is set when the enum marker method is written by hand.
	DeclaresSealer bool
	Pos            token.Pos
}

// Field is a value carried by a variant.
type Field struct {
	// Name is the Go field name, or "0" for the value of a positional variant.
	Name     string
	Index    int
	Type     types.Type
	Embedded bool
	// Format is the field-level fmt tag, if any.
	Format *directive.Format
	// Source marks the field returned by Unwrap.
	Source bool
	Pos    token.Pos
}

// Positional reports whether the field is the value of a positional variant.
func (f *Field) Positional() bool {
	return f.Name == PositionalName
}

// PositionalName is the reference name of a positional variant's value.
const PositionalName = "0"

// FieldByName returns the field named name, or nil.
func (v *Variant) FieldByName(name string) *Field {
	for i := range v.Fields {
		if v.Fields[i].Name == name {
			return &v.Fields[i]
		}
	}

	return nil
}

// SourceField returns the cause field, or nil.
func (v *Variant) SourceField() *Field {
	for i := range v.Fields {
		if v.Fields[i].Source {
			return &v.Fields[i]
		}
	}

	return nil
}

// Package holds the subjects found in one Go package.
type Package struct {
	Path string // Import path
	Name string // Package name
	// Dir is the directory the generated file is written to.
	Dir         string
	Fset        *token.FileSet
	Types       *types.Package
	Subjects    []Subject
	Diagnostics diagnostic.Diagnostics
}

// Position resolves pos against the package file set.
func (p *Package) Position(pos token.Pos) token.Position {
	if p.Fset == nil || !pos.IsValid() {
		return token.Position{}
	}

	return p.Fset.Position(pos)
}
