package directive

import (
	"fmt"
	"strings"
	"unicode"
)

// Piece is one part of a custom message template: either literal text or a
// reference to a field.
type Piece struct {
	Literal string
	Ref     string
	// Verb is the normalized inline verb of a reference, if any.
	Verb   string
	Offset int
}

// IsRef reports whether the piece references a field.
func (p Piece) IsRef() bool {
	return p.Ref != ""
}

// ParseTemplate splits a custom message template into pieces. It validates
// syntax only; whether references resolve depends on the variant.
func ParseTemplate(s string) ([]Piece, error) {
	var (
		pieces []Piece
		lit    strings.Builder
		litAt  int
	)

	flush := func() {
		if lit.Len() > 0 {
			pieces = append(pieces, Piece{Literal: lit.String(), Offset: litAt})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			if lit.Len() == 0 {
				litAt = i
			}

			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			if lit.Len() == 0 {
				litAt = i
			}

			lit.WriteByte('}')
			i++
		case c == '}':
			return nil, &Error{Code: CodeInvalidTemplate, Msg: fmt.Sprintf("unmatched } at offset %d", i), Offset: i}
		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, &Error{
					Code:   CodeInvalidTemplate,
					Msg:    fmt.Sprintf("unterminated placeholder at offset %d", i),
					Offset: i,
				}
			}

			p, err := parsePlaceholder(s[i+1:i+end], i)
			if err != nil {
				return nil, err
			}

			flush()

			pieces = append(pieces, p)
			i += end
		default:
			if lit.Len() == 0 {
				litAt = i
			}

			lit.WriteByte(c)
		}
	}

	flush()

	return pieces, nil
}

func parsePlaceholder(body string, offset int) (Piece, error) {
	name, verb, hasVerb := strings.Cut(body, ":")
	name = strings.TrimSpace(name)

	if !isRefName(name) {
		return Piece{}, &Error{
			Code:   CodeInvalidTemplate,
			Msg:    fmt.Sprintf("invalid placeholder {%s}: expected a field name or position", body),
			Offset: offset,
		}
	}

	p := Piece{Ref: name, Offset: offset}

	if hasVerb {
		v, err := NormalizeVerb(strings.TrimSpace(verb))
		if err != nil {
			return Piece{}, &Error{
				Code:   CodeInvalidVerb,
				Msg:    fmt.Sprintf("placeholder {%s}: %v", body, err),
				Offset: offset,
			}
		}

		p.Verb = v
	}

	return p, nil
}

func isRefName(s string) bool {
	if s == "" {
		return false
	}

	digits := true
	for _, r := range s {
		if !unicode.IsDigit(r) {
			digits = false
			break
		}
	}

	if digits {
		return true
	}

	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}

		return false
	}

	return true
}
