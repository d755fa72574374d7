package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"errgen/internal/common"
	"errgen/internal/diagnostic"
	"errgen/internal/directive"
)

// Diagnostic codes reported by the inspector.
const (
	CodeMisplacedDirective   = "misplaced_directive"
	CodeDuplicateDirective   = "duplicate_directive"
	CodeUnsupportedDecl      = "unsupported_decl"
	CodeGenericType          = "generic_type"
	CodeMissingEnumInterface = "missing_enum_interface"
	CodeEmptyEnum            = "empty_enum"
	CodeAmbiguousSource      = "ambiguous_source"
	CodeInvalidSource        = "invalid_source"
	CodeMethodConflict       = "method_conflict"
	CodeNoTypeInfo           = "no_type_info"
)

// Conventional names of a cause field when no field is tagged errgen:"source".
var sourceNames = []string{"Err", "err", "Cause", "cause", "Source", "source"}

var errorIface = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

// Inspector collects subjects from the declarations of one type-checked
// package. It is shared by the package loader and the vet analyzer.
type Inspector struct {
	fset *token.FileSet
	info *types.Info
	pkg  *Package

	outputFile string
	formatter  bool
	logger     *slog.Logger

	// generated holds the names of types that get an Error method.
	generated map[string]bool
	pending   []pendingVariant
}

// pendingVariant is a variant whose cause and methods are checked once the
// whole package has been inspected.
type pendingVariant struct {
	subject int
	variant int
	named   *types.Named
	loc     diagnostic.Location
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithOutputFile names the generated file. Methods declared in it never
// conflict with the methods errgen generates.
func WithOutputFile(name string) Option {
	return func(in *Inspector) { in.outputFile = name }
}

// WithFormatter tells whether a Format method will be generated.
func WithFormatter(enabled bool) Option {
	return func(in *Inspector) { in.formatter = enabled }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Inspector) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// NewInspector creates an Inspector for a package.
func NewInspector(fset *token.FileSet, pkg *types.Package, info *types.Info, opts ...Option) *Inspector {
	in := &Inspector{
		fset:      fset,
		info:      info,
		pkg:       &Package{Fset: fset, Types: pkg},
		formatter: true,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		generated: make(map[string]bool),
	}

	if pkg != nil {
		in.pkg.Path = pkg.Path()
		in.pkg.Name = pkg.Name()
	}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Package returns the collected subjects and diagnostics. Call it after
// every file has been inspected.
func (in *Inspector) Package() *Package {
	in.finish()
	return in.pkg
}

// finish resolves causes and method conflicts. A cause typed as another
// errgen type of the package counts as an error even before its methods
// have been generated.
func (in *Inspector) finish() {
	for _, p := range in.pending {
		v := &in.pkg.Subjects[p.subject].Variants[p.variant]

		in.resolveSource(v, p.loc)
		in.checkMethods(p.named, v, in.pkg.Subjects[p.subject].Sealer, p.loc)
	}

	in.pending = nil
}

func (in *Inspector) deferChecks(subject, variant int, named *types.Named, v *Variant, loc diagnostic.Location) {
	in.generated[v.Name] = true
	in.pending = append(in.pending, pendingVariant{subject: subject, variant: variant, named: named, loc: loc})
}

// SkipFile reports whether f is generated code, which never carries
// directives of its own.
func (in *Inspector) SkipFile(f *ast.File) bool {
	if ast.IsGenerated(f) {
		return true
	}

	return in.outputFile != "" && filepath.Base(in.fset.Position(f.Package).Filename) == in.outputFile
}

// InspectFile inspects every declaration of f.
func (in *Inspector) InspectFile(f *ast.File) {
	if in.pkg.Dir == "" {
		if name := in.fset.Position(f.Package).Filename; name != "" {
			in.pkg.Dir = filepath.Dir(name)
		}
	}

	if in.SkipFile(f) {
		return
	}

	for _, decl := range f.Decls {
		in.InspectDecl(decl)
	}
}

// InspectDecl inspects a single top-level declaration.
func (in *Inspector) InspectDecl(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		in.rejectDirectives(d.Doc, "functions")
	case *ast.GenDecl:
		if d.Tok != token.TYPE {
			in.rejectDirectives(d.Doc, d.Tok.String()+" declarations")

			for _, spec := range d.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					in.rejectDirectives(vs.Doc, d.Tok.String()+" declarations")
				}
			}

			return
		}

		in.inspectTypeDecl(d)
	}
}

func (in *Inspector) inspectTypeDecl(d *ast.GenDecl) {
	grouped := d.Lparen.IsValid()

	roots, variants := in.directives(d.Doc, diagnostic.Location{})

	for _, v := range variants {
		in.report(CodeMisplacedDirective,
			"errgen:variant must annotate a type inside an errgen:error group",
			diagnostic.Location{Pos: v.Pos})
	}

	if len(roots) > 1 {
		in.report(CodeDuplicateDirective, "errgen:error is declared more than once",
			diagnostic.Location{Pos: roots[1].Pos})
	}

	if len(roots) > 0 {
		if grouped {
			in.inspectEnum(d, roots[0])
		} else if ts, ok := d.Specs[0].(*ast.TypeSpec); ok {
			in.inspectStruct(ts, roots[0])
		}

		return
	}

	if !grouped {
		return
	}

	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		loc := diagnostic.Location{Subject: ts.Name.Name}
		roots, variants := in.directives(ts.Doc, loc)

		for _, v := range variants {
			loc.Pos = v.Pos
			in.report(CodeMisplacedDirective,
				"errgen:variant must annotate a type inside an errgen:error group", loc)
		}

		if len(roots) > 1 {
			loc.Pos = roots[1].Pos
			in.report(CodeDuplicateDirective, "errgen:error is declared more than once", loc)
		}

		if len(roots) > 0 {
			in.inspectStruct(ts, roots[0])
		}
	}
}

func (in *Inspector) inspectStruct(ts *ast.TypeSpec, root directive.Directive) {
	loc := diagnostic.Location{Subject: ts.Name.Name, Pos: ts.Pos()}

	named := in.named(ts, loc)
	if named == nil {
		return
	}

	switch named.Underlying().(type) {
	case *types.Interface:
		in.report(CodeUnsupportedDecl, fmt.Sprintf(
			"interface %s cannot be an error type on its own; annotate a type group to declare an enum",
			ts.Name.Name), loc)

		return
	case *types.Pointer:
		in.report(CodeUnsupportedDecl, fmt.Sprintf(
			"%s has a pointer underlying type and cannot have methods", ts.Name.Name), loc)

		return
	}

	v, ok := in.variant(ts, named, directive.Config{}, ts.Name.Name)
	if !ok {
		return
	}

	in.deferChecks(len(in.pkg.Subjects), 0, named, &v, variantLoc(ts.Name.Name, &v))

	in.pkg.Subjects = append(in.pkg.Subjects, Subject{
		Name:     ts.Name.Name,
		Kind:     SubjectStruct,
		Config:   root.Config,
		Variants: []Variant{v},
		Pos:      ts.Pos(),
	})

	in.logger.Debug("found error type", "package", in.pkg.Path, "name", ts.Name.Name, "shape", v.Shape)
}

func (in *Inspector) inspectEnum(d *ast.GenDecl, root directive.Directive) {
	var (
		iface     *ast.TypeSpec
		ifaceType *types.Interface
		specs     []*ast.TypeSpec
		named     []*types.Named
	)

	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		n := in.named(ts, diagnostic.Location{Subject: ts.Name.Name, Pos: ts.Pos()})
		if n == nil {
			continue
		}

		switch u := n.Underlying().(type) {
		case *types.Interface:
			if iface != nil {
				in.report(CodeUnsupportedDecl, fmt.Sprintf(
					"enum group declares more than one interface: %s and %s", iface.Name.Name, ts.Name.Name),
					diagnostic.Location{Subject: ts.Name.Name, Pos: ts.Pos()})

				continue
			}

			iface, ifaceType = ts, u
		case *types.Pointer:
			in.report(CodeUnsupportedDecl, fmt.Sprintf(
				"%s has a pointer underlying type and cannot have methods", ts.Name.Name),
				diagnostic.Location{Variant: ts.Name.Name, Pos: ts.Pos()})
		default:
			specs = append(specs, ts)
			named = append(named, n)
		}
	}

	if iface == nil {
		in.report(CodeMissingEnumInterface,
			"an errgen:error type group needs exactly one interface type naming the enum",
			diagnostic.Location{Pos: root.Pos})

		return
	}

	subject := Subject{
		Name:   iface.Name.Name,
		Kind:   SubjectEnum,
		Config: root.Config,
		Sealer: sealer(ifaceType),
		Pos:    iface.Pos(),
	}

	for i, ts := range specs {
		loc := diagnostic.Location{Subject: subject.Name, Variant: ts.Name.Name}
		roots, variants := in.directives(ts.Doc, loc)

		for _, r := range roots {
			loc.Pos = r.Pos
			in.report(CodeMisplacedDirective, "errgen:error cannot be nested inside an errgen:error group", loc)
		}

		if len(variants) > 1 {
			loc.Pos = variants[1].Pos
			in.report(CodeDuplicateDirective, "errgen:variant is declared more than once", loc)
		}

		var cfg directive.Config
		if first, ok := common.First(variants); ok {
			cfg = first.Config
		}

		if v, ok := in.variant(ts, named[i], cfg, subject.Name); ok {
			in.deferChecks(len(in.pkg.Subjects), len(subject.Variants), named[i], &v, variantLoc(subject.Name, &v))
			subject.Variants = append(subject.Variants, v)
		}
	}

	if common.IsEmpty(subject.Variants) {
		in.warn(CodeEmptyEnum, fmt.Sprintf("enum %s has no variants", subject.Name),
			diagnostic.Location{Subject: subject.Name, Pos: subject.Pos})
	}

	in.pkg.Subjects = append(in.pkg.Subjects, subject)

	in.logger.Debug("found error enum", "package", in.pkg.Path, "name", subject.Name,
		"variants", len(subject.Variants), "sealer", subject.Sealer)
}

// variant builds the variant for a named non-interface type.
func (in *Inspector) variant(ts *ast.TypeSpec, named *types.Named, cfg directive.Config, subject string) (Variant, bool) {
	loc := diagnostic.Location{Subject: subject, Variant: ts.Name.Name, Pos: ts.Pos()}

	if ts.TypeParams != nil && ts.TypeParams.NumFields() > 0 {
		in.report(CodeGenericType, fmt.Sprintf("generic type %s cannot be an error type", ts.Name.Name), loc)
		return Variant{}, false
	}

	v := Variant{Name: ts.Name.Name, Config: cfg, Pos: ts.Pos()}
	ok := true

	switch u := named.Underlying().(type) {
	case *types.Struct:
		v.Shape = ShapeUnit

		for i := 0; i < u.NumFields(); i++ {
			fv := u.Field(i)
			if fv.Name() == "_" {
				continue
			}

			v.Shape = ShapeNamed

			tags, err := directive.ParseFieldTags(u.Tag(i))
			if err != nil {
				floc := loc
				floc.Field, floc.Pos = fv.Name(), fv.Pos()
				in.reportParseError(err, floc)

				ok = false

				continue
			}

			v.Fields = append(v.Fields, Field{
				Name:     fv.Name(),
				Index:    i,
				Type:     fv.Type(),
				Embedded: fv.Embedded(),
				Format:   tags.Format,
				Source:   tags.Source,
				Pos:      fv.Pos(),
			})
		}
	default:
		v.Shape = ShapePositional
		v.Underlying = u
		v.Fields = []Field{{Name: PositionalName, Type: u, Pos: ts.Pos()}}
	}

	return v, ok
}

func variantLoc(subject string, v *Variant) diagnostic.Location {
	return diagnostic.Location{Subject: subject, Variant: v.Name, Pos: v.Pos}
}

// resolveSource marks the cause field: the one tagged errgen:"source", or a
// single error-typed field with a conventional name.
func (in *Inspector) resolveSource(v *Variant, loc diagnostic.Location) {
	var tagged []int

	for i := range v.Fields {
		if v.Fields[i].Source {
			tagged = append(tagged, i)
		}
	}

	switch {
	case common.IsMultiple(tagged):
		loc.Pos = v.Fields[tagged[1]].Pos
		in.report(CodeAmbiguousSource, fmt.Sprintf(`fields %s and %s are both tagged errgen:"source"`,
			v.Fields[tagged[0]].Name, v.Fields[tagged[1]].Name), loc)

		return
	case common.IsSingle(tagged):
		f := &v.Fields[tagged[0]]
		if !in.implementsError(f.Type) {
			loc.Field, loc.Pos = f.Name, f.Pos
			in.report(CodeInvalidSource, fmt.Sprintf(`field %s is tagged errgen:"source" but %s does not implement error`,
				f.Name, types.TypeString(f.Type, types.RelativeTo(in.pkg.Types))), loc)
		}

		return
	}

	var candidates []int

	for i := range v.Fields {
		f := &v.Fields[i]
		if isSourceName(f.Name) && in.implementsError(f.Type) {
			candidates = append(candidates, i)
		}
	}

	switch {
	case common.IsMultiple(candidates):
		loc.Pos = v.Fields[candidates[1]].Pos
		in.report(CodeAmbiguousSource, fmt.Sprintf(
			`fields %s and %s could both be the cause; tag one with errgen:"source"`,
			v.Fields[candidates[0]].Name, v.Fields[candidates[1]].Name), loc)
	case common.IsSingle(candidates):
		v.Fields[candidates[0]].Source = true
	}
}

func isSourceName(name string) bool {
	return slices.Contains(sourceNames, name)
}

// implementsError reports whether t, or the errgen type it names, is an error.
func (in *Inspector) implementsError(t types.Type) bool {
	if types.Implements(t, errorIface) {
		return true
	}

	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}

	named, ok := t.(*types.Named)
	if !ok || in.pkg.Types == nil {
		return false
	}

	obj := named.Obj()

	return obj.Pkg() == in.pkg.Types && in.generated[obj.Name()]
}

// checkMethods reports hand-written methods and fields that the generated
// methods would collide with. A hand-written sealer is kept and not
// generated again.
func (in *Inspector) checkMethods(named *types.Named, v *Variant, sealerName string, loc diagnostic.Location) {
	generated := map[string]bool{"Error": true}
	if in.formatter {
		generated["Format"] = true
	}

	if v.SourceField() != nil {
		generated["Unwrap"] = true
	}

	if sealerName != "" {
		generated[sealerName] = true
	}

	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		if !generated[m.Name()] || in.inOutputFile(m.Pos()) {
			continue
		}

		if m.Name() == sealerName && isMarker(m) {
			v.DeclaresSealer = true
			continue
		}

		mloc := loc
		mloc.Pos = m.Pos()
		in.report(CodeMethodConflict, fmt.Sprintf("%s already declares %s, which errgen generates", v.Name, m.Name()), mloc)
	}

	for _, f := range v.Fields {
		if f.Positional() || !generated[f.Name] {
			continue
		}

		floc := loc
		floc.Field, floc.Pos = f.Name, f.Pos
		in.report(CodeMethodConflict, fmt.Sprintf("field %s of %s collides with the %s method errgen generates",
			f.Name, v.Name, f.Name), floc)
	}
}

// isMarker reports whether m takes no arguments and returns nothing.
func isMarker(m *types.Func) bool {
	sig, ok := m.Type().(*types.Signature)

	return ok && sig.Params().Len() == 0 && sig.Results().Len() == 0
}

func (in *Inspector) inOutputFile(pos token.Pos) bool {
	if in.outputFile == "" || !pos.IsValid() {
		return false
	}

	return filepath.Base(in.fset.Position(pos).Filename) == in.outputFile
}

// sealer returns the unexported, argument-less marker method of an enum
// interface, if any.
func sealer(iface *types.Interface) string {
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		m := iface.ExplicitMethod(i)

		if !m.Exported() && isMarker(m) {
			return m.Name()
		}
	}

	return ""
}

func (in *Inspector) named(ts *ast.TypeSpec, loc diagnostic.Location) *types.Named {
	if ts.Assign.IsValid() {
		in.report(CodeUnsupportedDecl, fmt.Sprintf("type alias %s cannot be an error type", ts.Name.Name), loc)
		return nil
	}

	if in.info == nil {
		in.report(CodeNoTypeInfo, fmt.Sprintf("no type information for %s", ts.Name.Name), loc)
		return nil
	}

	obj, ok := in.info.Defs[ts.Name].(*types.TypeName)
	if !ok {
		in.report(CodeNoTypeInfo, fmt.Sprintf("no type information for %s", ts.Name.Name), loc)
		return nil
	}

	named, ok := obj.Type().(*types.Named)
	if !ok {
		in.report(CodeUnsupportedDecl, fmt.Sprintf("%s is not a defined type", ts.Name.Name), loc)
		return nil
	}

	return named
}

// directives parses the errgen directives of a doc comment, reporting parse
// errors, and splits them by kind.
func (in *Inspector) directives(cg *ast.CommentGroup, loc diagnostic.Location) (roots, variants []directive.Directive) {
	found, err := directive.Find(cg)
	if err != nil {
		in.reportParseError(err, loc)
	}

	for _, d := range found {
		switch d.Kind {
		case directive.KindError:
			roots = append(roots, d)
		case directive.KindVariant:
			variants = append(variants, d)
		}
	}

	return roots, variants
}

func (in *Inspector) rejectDirectives(cg *ast.CommentGroup, what string) {
	found, err := directive.Find(cg)
	if err != nil {
		in.reportParseError(err, diagnostic.Location{})
	}

	for _, d := range found {
		in.report(CodeMisplacedDirective,
			fmt.Sprintf("errgen:%s cannot annotate %s", d.Kind, what),
			diagnostic.Location{Pos: d.Pos})
	}
}

func (in *Inspector) reportParseError(err error, loc diagnostic.Location) {
	var perr *directive.Error
	if !errors.As(err, &perr) {
		in.report(directive.CodeSyntax, err.Error(), loc)
		return
	}

	if perr.Pos.IsValid() {
		loc.Pos = perr.Pos
	}

	in.report(perr.Code, perr.Msg, loc)
}

func (in *Inspector) report(code, msg string, loc diagnostic.Location) {
	loc.Position = in.pkg.Position(loc.Pos)
	in.pkg.Diagnostics.AddError(code, msg, loc)
}

func (in *Inspector) warn(code, msg string, loc diagnostic.Location) {
	loc.Position = in.pkg.Position(loc.Pos)
	in.pkg.Diagnostics.AddWarning(code, msg, loc)
}
