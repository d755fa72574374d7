package directive

import (
	"go/token"
)

//go:generate go tool stringer -type=Mode -linecomment -output=mode_string.go

// Mode selects how a message, or a single field, is rendered.
type Mode int

const (
	_ Mode = iota // zero value is an unset mode

	ModeDisplay // display
	ModeDebug   // debug
	ModeCustom  // custom
)

// Format is a resolved fmt option.
// Custom holds the message template (root and variant level) or the
// normalized verb (field level) when Mode is ModeCustom.
type Format struct {
	Mode   Mode
	Custom string
}

// Display returns the display format.
func Display() Format { return Format{Mode: ModeDisplay} }

// Debug returns the debug format.
func Debug() Format { return Format{Mode: ModeDebug} }

// Custom returns a custom format holding s.
func Custom(s string) Format { return Format{Mode: ModeCustom, Custom: s} }

// String returns the directive spelling of the format.
func (f Format) String() string {
	if f.Mode == ModeCustom {
		return quote(f.Custom)
	}

	return f.Mode.String()
}

// Verb returns the fmt verb a field takes when this format is inherited from
// a variant or root setting. Custom templates do not carry a verb.
func (f Format) Verb() string {
	if f.Mode == ModeDebug {
		return "%+v"
	}

	return "%v"
}

// Config is the option record of a root or variant directive.
type Config struct {
	Desc *string
	Fmt  *Format
	// Pos is the position of the directive the options were read from.
	// It is token.NoPos for configs that did not come from source.
	Pos token.Pos
}

// IsEmpty reports whether neither option is set.
func (c Config) IsEmpty() bool {
	return c.Desc == nil && c.Fmt == nil
}

// FormatFromString maps a plain string to a format: "display" and "debug" map
// to their modes, anything else is a custom template. Used for values that do
// not come from directive syntax (project defaults).
func FormatFromString(s string) Format {
	switch s {
	case "display":
		return Display()
	case "debug":
		return Debug()
	default:
		return Custom(s)
	}
}
