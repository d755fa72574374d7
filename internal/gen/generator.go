package gen

import (
	"bytes"
	"fmt"
	"go/types"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"errgen/internal/analyze"
	"errgen/internal/common"
	"errgen/internal/plan"
)

// Header is the first line of every generated file.
const Header = "// Code generated by errgen. DO NOT EDIT."

// DefaultOutputFile is the name of the generated file in each package.
const DefaultOutputFile = "errors_errgen.go"

// recv is the receiver name of every generated method.
const recv = "e"

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// OutputFile is the base name of the file generated in each package.
	OutputFile string
	// Formatter enables generation of fmt.Formatter methods.
	Formatter bool
	// DebugUnformatted writes an .unformatted.go sidecar when the generated
	// source fails to format.
	DebugUnformatted bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		OutputFile:       DefaultOutputFile,
		Formatter:        true,
		DebugUnformatted: true,
	}
}

// Generator generates Go code from a resolved plan.
type Generator struct {
	config GeneratorConfig
	logger *slog.Logger
}

// NewGenerator creates a new Generator. A nil logger discards output.
func NewGenerator(config GeneratorConfig, logger *slog.Logger) *Generator {
	if config.OutputFile == "" {
		config.OutputFile = DefaultOutputFile
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Generator{config: config, logger: logger}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Package is the import path of the package the file belongs to.
	Package string
	// Dir is the package directory.
	Dir string
	// Filename is the base name of the file.
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Path returns the full path of the file.
func (f GeneratedFile) Path() string {
	return filepath.Join(f.Dir, f.Filename)
}

// Generate generates one file per package that declares error types.
// Packages without subjects produce no file.
func (g *Generator) Generate(p *plan.Plan) ([]GeneratedFile, error) {
	if err := p.Diagnostics.Error(); err != nil {
		return nil, fmt.Errorf("plan has errors: %w", err)
	}

	var files []GeneratedFile

	for i := range p.Packages {
		rp := &p.Packages[i]
		if len(rp.Subjects) == 0 {
			g.logger.Debug("nothing to generate", "package", rp.Package.Path)
			continue
		}

		file, err := g.GeneratePackage(rp)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", rp.Package.Path, err)
		}

		files = append(files, *file)
	}

	return files, nil
}

// GeneratePackage renders and formats the generated file of one package.
func (g *Generator) GeneratePackage(rp *plan.ResolvedPackage) (*GeneratedFile, error) {
	data := g.buildFileData(rp)

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	file := &GeneratedFile{
		Package:  rp.Package.Path,
		Dir:      rp.Package.Dir,
		Filename: g.config.OutputFile,
	}

	// imports.Process formats the source and drops fmt when no method uses it.
	formatted, err := imports.Process(file.Path(), buf.Bytes(), nil)
	if err != nil {
		if g.config.DebugUnformatted && file.Dir != "" {
			if werr := writeDebugUnformatted(file.Dir, file.Filename, buf.Bytes()); werr != nil {
				g.logger.Warn("writing unformatted sidecar", "dir", file.Dir, "error", werr)
			}
		}

		file.Content = buf.Bytes()

		return file, fmt.Errorf("formatting code: %w", err)
	}

	file.Content = formatted

	g.logger.Debug("generated file", "package", file.Package, "path", file.Path(),
		"subjects", len(rp.Subjects), "bytes", len(formatted))

	return file, nil
}

// fileData holds all data needed for the file template.
type fileData struct {
	Header      string
	PackageName string
	Imports     []importSpec
	Subjects    []subjectData
	Formatter   bool
	Recv        string
}

type subjectData struct {
	Name     string
	Enum     bool
	Variants []variantData
}

type variantData struct {
	Name string
	// ErrorExpr is the expression returned by Error.
	ErrorExpr string
	// DebugStmt prints the debug form to s.
	DebugStmt string
	// UnwrapExpr is the cause expression, empty without a cause.
	UnwrapExpr string
	// UnwrapNilCheck guards pointer causes so a nil pointer unwraps to nil.
	UnwrapNilCheck bool
	Sealer         string
	// Assert is the interface the variant is asserted to implement.
	Assert string
}

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

func (g *Generator) buildFileData(rp *plan.ResolvedPackage) *fileData {
	q := newQualifier(rp.Package.Types)

	data := &fileData{
		Header:      Header,
		PackageName: rp.Package.Name,
		Formatter:   g.config.Formatter,
		Recv:        recv,
	}

	for _, rs := range rp.Subjects {
		sd := subjectData{Name: rs.Subject.Name, Enum: rs.Subject.Kind == analyze.SubjectEnum}

		for i := range rs.Variants {
			rv := &rs.Variants[i]
			vd := variantData{
				Name:      rv.Variant.Name,
				ErrorExpr: sprintfExpr("fmt.Sprintf(", rv, rv.Message, q),
				DebugStmt: sprintfExpr("fmt.Fprintf(s, ", rv, rv.Debug, q),
				Assert:    "error",
			}

			if rv.Debug.IsStatic() {
				vd.DebugStmt = "fmt.Fprint(s, " + strconv.Quote(rv.Debug.Text()) + ")"
			}

			if sd.Enum {
				vd.Assert = rs.Subject.Name

				if !rv.Variant.DeclaresSealer {
					vd.Sealer = rs.Subject.Sealer
				}
			}

			if rv.Source != nil {
				vd.UnwrapExpr = valueExpr(rv, rv.Source, q)
				vd.UnwrapNilCheck = isPointer(rv.Source.Field.Type)
			}

			sd.Variants = append(sd.Variants, vd)
		}

		data.Subjects = append(data.Subjects, sd)
	}

	data.Imports = q.imports()

	return data
}

// sprintfExpr returns a string literal for static messages and a call of
// open with the format string and field values otherwise.
func sprintfExpr(open string, rv *plan.ResolvedVariant, m plan.Message, q *qualifier) string {
	if m.IsStatic() {
		return strconv.Quote(m.Text())
	}

	args := []string{strconv.Quote(m.FormatString())}
	for _, f := range m.Fields() {
		args = append(args, valueExpr(rv, f, q))
	}

	return open + strings.Join(args, ", ") + ")"
}

// valueExpr returns the expression reading a field from the receiver. The
// value of a positional variant is converted to its underlying type so that
// formatting it does not call back into Error.
func valueExpr(rv *plan.ResolvedVariant, f *plan.ResolvedField, q *qualifier) string {
	if !f.Field.Positional() {
		return recv + "." + f.Name
	}

	typ := "any"
	if u := rv.Variant.Underlying; u != nil {
		typ = types.TypeString(u, q.qualify)
	}

	if !isIdent(typ) {
		typ = "(" + typ + ")"
	}

	return typ + "(" + recv + ")"
}

func isPointer(t types.Type) bool {
	if t == nil {
		return false
	}

	_, ok := t.Underlying().(*types.Pointer)

	return ok
}

func isIdent(s string) bool {
	for _, r := range s {
		if r != '_' && r != '.' && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') {
			return false
		}
	}

	return s != ""
}

// qualifier names packages referenced by converted types and records the
// imports they need.
type qualifier struct {
	self   *types.Package
	byPath map[string]string
	used   map[string]string
}

func newQualifier(self *types.Package) *qualifier {
	return &qualifier{
		self:   self,
		byPath: map[string]string{"fmt": "fmt"},
		used:   map[string]string{"fmt": "fmt"},
	}
}

func (q *qualifier) qualify(pkg *types.Package) string {
	if pkg == nil || (q.self != nil && pkg.Path() == q.self.Path()) {
		return ""
	}

	if name, ok := q.byPath[pkg.Path()]; ok {
		return name
	}

	name := pkg.Name()
	for n := 2; q.used[name] != ""; n++ {
		name = pkg.Name() + strconv.Itoa(n)
	}

	q.byPath[pkg.Path()] = name
	q.used[name] = pkg.Path()

	return name
}

func (q *qualifier) imports() []importSpec {
	specs := make([]importSpec, 0, len(q.byPath))

	for path, name := range q.byPath {
		spec := importSpec{Path: path}
		if name != common.PkgAlias(path) {
			spec.Alias = name
		}

		specs = append(specs, spec)
	}

	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Path < specs[j].Path
	})

	return specs
}

var fileTemplate = template.Must(template.New("errors").Parse(`{{.Header}}

package {{.PackageName}}

import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{range $s := .Subjects}}{{range .Variants}}
// Error implements error.
func ({{$.Recv}} {{.Name}}) Error() string {
	return {{.ErrorExpr}}
}
{{if $.Formatter}}
// Format prints the debug form for %+v and the Error message otherwise.
func ({{$.Recv}} {{.Name}}) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('+'):
		{{.DebugStmt}}
	case verb == 'q':
		fmt.Fprintf(s, "%q", {{$.Recv}}.Error())
	default:
		fmt.Fprint(s, {{$.Recv}}.Error())
	}
}
{{end}}{{if .UnwrapExpr}}
// Unwrap returns the cause of {{.Name}}.
func ({{$.Recv}} {{.Name}}) Unwrap() error {
{{if .UnwrapNilCheck}}	if {{.UnwrapExpr}} == nil {
		return nil
	}

{{end}}	return {{.UnwrapExpr}}
}
{{end}}{{if .Sealer}}
func ({{.Name}}) {{.Sealer}}() {}
{{end}}{{end}}
var (
{{range .Variants}}	_ {{.Assert}} = (*{{.Name}})(nil)
{{if $.Formatter}}	_ fmt.Formatter = (*{{.Name}})(nil)
{{end}}{{end}})
{{end}}`))
