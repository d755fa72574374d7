package plan

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"errgen/internal/analyze"
	"errgen/internal/diagnostic"
	"errgen/internal/directive"
	"errgen/internal/match"
)

// Diagnostic codes reported during resolution.
const (
	CodeUnknownField    = "unknown_field"
	CodeInvalidTemplate = directive.CodeInvalidTemplate
)

// ResolutionConfig holds configuration for the resolution process.
type ResolutionConfig struct {
	// Defaults sit below root directives in the fallback chain.
	Defaults directive.Config
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() ResolutionConfig {
	return ResolutionConfig{}
}

// Resolver applies the root -> variant -> field fallback chain and
// synthesizes messages.
type Resolver struct {
	config ResolutionConfig
	logger *slog.Logger
}

// NewResolver creates a new Resolver. A nil logger discards output.
func NewResolver(config ResolutionConfig, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Resolver{config: config, logger: logger}
}

// Resolve resolves every package. Inspection diagnostics are carried into
// the plan; the returned error is non-nil when any diagnostic is an error.
func (r *Resolver) Resolve(pkgs []*analyze.Package) (*Plan, error) {
	if len(pkgs) == 0 {
		return nil, errors.New("no packages to resolve")
	}

	p := &Plan{}

	for _, pkg := range pkgs {
		p.Diagnostics.Merge(pkg.Diagnostics)

		rp, diags := r.ResolvePackage(pkg)
		p.Diagnostics.Merge(diags)
		p.Packages = append(p.Packages, rp)
	}

	p.Diagnostics.Sort()

	return p, p.Diagnostics.Error()
}

// ResolvePackage resolves the subjects of one package. Only resolution
// diagnostics are returned; the package's own diagnostics are left as is.
func (r *Resolver) ResolvePackage(pkg *analyze.Package) (ResolvedPackage, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	rp := ResolvedPackage{Package: pkg}

	for i := range pkg.Subjects {
		s := &pkg.Subjects[i]
		rs := ResolvedSubject{Subject: s}

		for j := range s.Variants {
			rv, ok := r.resolveVariant(pkg, s, &s.Variants[j], &diags)
			if ok {
				rs.Variants = append(rs.Variants, rv)
			}
		}

		rp.Subjects = append(rp.Subjects, rs)
	}

	return rp, diags
}

func (r *Resolver) resolveVariant(
	pkg *analyze.Package,
	s *analyze.Subject,
	v *analyze.Variant,
	diags *diagnostic.Diagnostics,
) (ResolvedVariant, bool) {
	eff := r.effective(s, v)

	rv := ResolvedVariant{
		Variant:   v,
		Effective: eff,
		Fields:    make([]ResolvedField, len(v.Fields)),
	}

	for i := range v.Fields {
		f := &v.Fields[i]
		rv.Fields[i] = ResolvedField{
			Name:      f.Name,
			Field:     f,
			Verb:      r.fieldVerb(s, v, f),
			DebugVerb: debugVerb(f),
		}

		if f.Source {
			rv.Source = &rv.Fields[i]
		}
	}

	rv.Debug = debugMessage(v.Name, rv.Fields, func(f *ResolvedField) string { return f.DebugVerb })

	msg, err := r.message(v, &rv)
	if err != nil {
		loc := diagnostic.Location{
			Subject:  s.Name,
			Variant:  v.Name,
			Pos:      eff.FormatPos,
			Position: pkg.Position(eff.FormatPos),
		}

		var rerr *refError
		if errors.As(err, &rerr) {
			diags.AddError(CodeUnknownField, rerr.Error(), loc)
		} else {
			diags.AddError(CodeInvalidTemplate, err.Error(), loc)
		}

		return ResolvedVariant{}, false
	}

	rv.Message = msg

	r.logger.Debug("resolved variant",
		"subject", s.Name,
		"variant", v.Name,
		"fmt", eff.Format.String(),
		"fmt_origin", eff.FormatOrigin,
		"desc_origin", eff.DescOrigin,
		"message", msg.String(),
	)

	return rv, true
}

// effective applies the fallback chain: variant, root, project defaults,
// then display. Options never come from a sibling variant.
func (r *Resolver) effective(s *analyze.Subject, v *analyze.Variant) Effective {
	var eff Effective

	switch {
	case v.Config.Desc != nil:
		eff.Desc, eff.DescOrigin = v.Config.Desc, OriginVariant
	case s.Config.Desc != nil:
		eff.Desc, eff.DescOrigin = s.Config.Desc, OriginRoot
	case r.config.Defaults.Desc != nil:
		eff.Desc, eff.DescOrigin = r.config.Defaults.Desc, OriginDefaults
	}

	switch {
	case v.Config.Fmt != nil:
		eff.Format, eff.FormatOrigin, eff.FormatPos = *v.Config.Fmt, OriginVariant, v.Config.Pos
	case s.Config.Fmt != nil:
		eff.Format, eff.FormatOrigin, eff.FormatPos = *s.Config.Fmt, OriginRoot, s.Config.Pos
	case r.config.Defaults.Fmt != nil:
		eff.Format, eff.FormatOrigin = *r.config.Defaults.Fmt, OriginDefaults
	default:
		eff.Format, eff.FormatOrigin = directive.Display(), OriginBuiltin
	}

	if !eff.FormatPos.IsValid() {
		eff.FormatPos = v.Pos
	}

	return eff
}

// fieldVerb returns the verb a field is substituted with: its own fmt tag,
// else the verb of the first mode set on the variant, root or defaults.
func (r *Resolver) fieldVerb(s *analyze.Subject, v *analyze.Variant, f *analyze.Field) string {
	if f.Format != nil {
		return tagVerb(*f.Format)
	}

	for _, fm := range []*directive.Format{v.Config.Fmt, s.Config.Fmt, r.config.Defaults.Fmt} {
		if fm != nil {
			return fm.Verb()
		}
	}

	return directive.Display().Verb()
}

func debugVerb(f *analyze.Field) string {
	if f.Format != nil {
		return tagVerb(*f.Format)
	}

	return directive.Debug().Verb()
}

// tagVerb maps a field tag format to its verb; custom tags hold the verb.
func tagVerb(f directive.Format) string {
	if f.Mode == directive.ModeCustom {
		return f.Custom
	}

	return f.Verb()
}

// message synthesizes the Error message of a variant.
func (r *Resolver) message(v *analyze.Variant, rv *ResolvedVariant) (Message, error) {
	eff := rv.Effective

	if eff.Desc != nil {
		var m Message
		m.literal(*eff.Desc)

		return m, nil
	}

	switch eff.Format.Mode {
	case directive.ModeDebug:
		return debugMessage(v.Name, rv.Fields, func(f *ResolvedField) string { return f.Verb }), nil
	case directive.ModeCustom:
		return templateMessage(v.Name, eff.Format.Custom, rv.Fields)
	default:
		var m Message
		m.literal(v.Name)

		return m, nil
	}
}

// debugMessage lays out the variant name followed by one line per field.
// Variants without fields get the name only; the single value of a
// positional variant is printed without a name.
func debugMessage(name string, fields []ResolvedField, verb func(*ResolvedField) string) Message {
	var m Message

	m.literal(name)

	if len(fields) == 0 {
		return m
	}

	m.literal("\n" + DebugBanner + "\n")

	bare := len(fields) == 1 && fields[0].Field.Positional()

	for i := range fields {
		f := &fields[i]
		if !bare {
			m.literal(f.Name + ": ")
		}

		m.field(f, verb(f))
		m.literal("\n")
	}

	return m
}

type refError struct {
	ref     string
	variant string
	fields  []string
}

func (e *refError) Error() string {
	return fmt.Sprintf("fmt template references {%s}, which is not a field of %s%s",
		e.ref, e.variant, match.DidYouMean(e.ref, e.fields))
}

// templateMessage substitutes a custom template against the variant fields.
func templateMessage(name, tmpl string, fields []ResolvedField) (Message, error) {
	pieces, err := directive.ParseTemplate(tmpl)
	if err != nil {
		return Message{}, err
	}

	var m Message

	for _, p := range pieces {
		if !p.IsRef() {
			m.literal(p.Literal)
			continue
		}

		f := lookupField(fields, p.Ref)
		if f == nil {
			return Message{}, &refError{ref: p.Ref, variant: name, fields: fieldNames(fields)}
		}

		verb := f.Verb
		if p.Verb != "" {
			verb = p.Verb
		}

		m.field(f, verb)
	}

	return m, nil
}

func fieldNames(fields []ResolvedField) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	return names
}

func lookupField(fields []ResolvedField, name string) *ResolvedField {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}

	return nil
}
