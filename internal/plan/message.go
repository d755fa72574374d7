package plan

import (
	"fmt"
	"strings"
)

// DebugBanner opens the field block of debug messages.
const DebugBanner = "=== DEBUG DATA:"

// Segment is a piece of a message: literal text or a field substitution.
type Segment struct {
	Literal string
	Field   *ResolvedField
	// Verb is the fmt verb used for Field.
	Verb string
}

// Message is a synthesized message template.
type Message struct {
	Segments []Segment
}

func (m *Message) literal(s string) {
	if s == "" {
		return
	}

	if n := len(m.Segments); n > 0 && m.Segments[n-1].Field == nil {
		m.Segments[n-1].Literal += s
		return
	}

	m.Segments = append(m.Segments, Segment{Literal: s})
}

func (m *Message) field(f *ResolvedField, verb string) {
	m.Segments = append(m.Segments, Segment{Field: f, Verb: verb})
}

// IsStatic reports whether the message has no field substitutions.
func (m Message) IsStatic() bool {
	for _, s := range m.Segments {
		if s.Field != nil {
			return false
		}
	}

	return true
}

// Text returns the literal text of a static message.
func (m Message) Text() string {
	var sb strings.Builder

	for _, s := range m.Segments {
		sb.WriteString(s.Literal)
	}

	return sb.String()
}

// FormatString returns the message as a fmt format string: literal percent
// signs are escaped and each field becomes its verb.
func (m Message) FormatString() string {
	var sb strings.Builder

	for _, s := range m.Segments {
		if s.Field != nil {
			sb.WriteString(s.Verb)
			continue
		}

		sb.WriteString(strings.ReplaceAll(s.Literal, "%", "%%"))
	}

	return sb.String()
}

// Fields returns the substituted fields in order. A field may appear more
// than once.
func (m Message) Fields() []*ResolvedField {
	var out []*ResolvedField

	for _, s := range m.Segments {
		if s.Field != nil {
			out = append(out, s.Field)
		}
	}

	return out
}

// Render formats the message with values looked up by field name. It is the
// runtime behavior of the generated Error method, used for previews and tests.
func (m Message) Render(value func(name string) any) string {
	if m.IsStatic() {
		return m.Text()
	}

	fields := m.Fields()
	args := make([]any, len(fields))

	for i, f := range fields {
		args[i] = value(f.Name)
	}

	return fmt.Sprintf(m.FormatString(), args...)
}

// String renders the template with {Name:verb} placeholders.
func (m Message) String() string {
	var sb strings.Builder

	for _, s := range m.Segments {
		if s.Field != nil {
			fmt.Fprintf(&sb, "{%s:%s}", s.Field.Name, strings.TrimPrefix(s.Verb, "%"))
			continue
		}

		sb.WriteString(s.Literal)
	}

	return sb.String()
}
