package directive

import (
	"fmt"
	"reflect"
	"strings"
)

// Struct tag keys read from variant fields.
const (
	TagFormat = "fmt"
	TagRole   = "errgen"
)

// RoleSource marks the field holding the underlying cause.
const RoleSource = "source"

const (
	verbFlags   = "+-# 0"
	verbLetters = "vTtbcdoOqxXUeEfFgGsp"
)

// NormalizeVerb turns a field format directive into a complete fmt verb.
// The leading % and the trailing v are optional:
//
//	"%05d" -> "%05d"
//	"05d"  -> "%05d"
//	"5"    -> "%5v"
//	"+"    -> "%+v"
func NormalizeVerb(s string) (string, error) {
	spec := strings.TrimPrefix(s, "%")
	if spec == "" {
		return "", &Error{Code: CodeInvalidVerb, Msg: "empty format verb"}
	}

	i := 0
	for i < len(spec) && strings.IndexByte(verbFlags, spec[i]) >= 0 {
		i++
	}

	i = skipDigits(spec, i)

	if i < len(spec) && spec[i] == '.' {
		i = skipDigits(spec, i+1)
	}

	switch {
	case i == len(spec):
		return "%" + spec + "v", nil
	case i == len(spec)-1 && strings.IndexByte(verbLetters, spec[i]) >= 0:
		return "%" + spec, nil
	default:
		return "", &Error{
			Code:   CodeInvalidVerb,
			Msg:    fmt.Sprintf("invalid format verb %q at %q", s, spec[i:]),
			Offset: i,
		}
	}
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	return i
}

// ParseFieldFormat parses the value of a field's fmt tag.
func ParseFieldFormat(value string) (Format, error) {
	switch value {
	case "display":
		return Display(), nil
	case "debug":
		return Debug(), nil
	case "":
		return Format{}, &Error{Code: CodeInvalidValue, Msg: "empty fmt tag"}
	}

	verb, err := NormalizeVerb(value)
	if err != nil {
		return Format{}, err
	}

	return Custom(verb), nil
}

// FieldTags holds the errgen-relevant parts of a struct tag.
type FieldTags struct {
	Format *Format
	Source bool
}

// ParseFieldTags reads the fmt and errgen keys of a raw struct tag.
func ParseFieldTags(tag string) (FieldTags, error) {
	var out FieldTags

	st := reflect.StructTag(tag)

	if v, ok := st.Lookup(TagFormat); ok {
		f, err := ParseFieldFormat(v)
		if err != nil {
			return FieldTags{}, err
		}

		out.Format = &f
	}

	if v, ok := st.Lookup(TagRole); ok {
		for _, role := range strings.Split(v, ",") {
			switch strings.TrimSpace(role) {
			case RoleSource:
				out.Source = true
			case "":
			default:
				return FieldTags{}, &Error{
					Code: CodeInvalidValue,
					Msg:  fmt.Sprintf("unknown errgen tag value %q (expected %q)", role, RoleSource),
				}
			}
		}
	}

	return out, nil
}
