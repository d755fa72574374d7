package gen

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"errgen/internal/analyze"
	"errgen/internal/diagnostic"
	"errgen/internal/plan"
)

const errorsSource = `package errs

//errgen:error fmt=debug
type (
	EnumError interface {
		error
		enumError()
	}

	//errgen:variant desc="Foo error"
	Foo struct{}

	Bar struct {
		A string
		B int ` + "`fmt:\"05\"`" + `
	}

	Baz []string
)

//errgen:error fmt="query {Query} failed: {Err}"
type QueryError struct {
	Query string
	Err   error
}

type NotFound struct{}

func (*NotFound) Error() string { return "not found" }

//errgen:error
type Lookup struct {
	Key   string
	Cause *NotFound
}
`

type fixture struct {
	fset *token.FileSet
	file *ast.File
	plan *plan.Plan
}

func resolveSource(t *testing.T, src string) *fixture {
	t.Helper()

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "errors.go", src, parser.ParseComments)
	require.NoError(t, err)

	info := &types.Info{Defs: make(map[*ast.Ident]types.Object)}

	pkg, err := (&types.Config{}).Check("example.com/errs", fset, []*ast.File{f}, info)
	require.NoError(t, err)

	in := analyze.NewInspector(fset, pkg, info, analyze.WithOutputFile(DefaultOutputFile))
	in.InspectFile(f)

	p, err := plan.NewResolver(plan.DefaultConfig(), nil).Resolve([]*analyze.Package{in.Package()})
	require.NoError(t, err)

	return &fixture{fset: fset, file: f, plan: p}
}

var spaces = regexp.MustCompile(`[ \t]+`)

// squash collapses the alignment gofmt adds inside var blocks.
func squash(b []byte) string {
	return spaces.ReplaceAllString(string(b), " ")
}

func generateOne(t *testing.T, src string, config GeneratorConfig) (*fixture, GeneratedFile) {
	t.Helper()

	fx := resolveSource(t, src)

	files, err := NewGenerator(config, nil).Generate(fx.plan)
	require.NoError(t, err)
	require.Len(t, files, 1)

	return fx, files[0]
}

func TestGenerator_Generate(t *testing.T) {
	config := DefaultGeneratorConfig()
	config.DebugUnformatted = false

	_, file := generateOne(t, errorsSource, config)

	assert.Equal(t, DefaultOutputFile, file.Filename)
	assert.Equal(t, "example.com/errs", file.Package)
	assert.True(t, IsGenerated(file.Content))

	out := squash(file.Content)

	for _, want := range []string{
		"package errs",
		`"fmt"`,
		// desc wins over the inherited debug mode
		"func (e Foo) Error() string {\n return \"Foo error\"\n}",
		`return fmt.Sprintf("Bar\n=== DEBUG DATA:\nA: %+v\nB: %05v\n", e.A, e.B)`,
		`return fmt.Sprintf("Baz\n=== DEBUG DATA:\n%+v\n", ([]string)(e))`,
		`return fmt.Sprintf("query %v failed: %v", e.Query, e.Err)`,
		`fmt.Fprintf(s, "QueryError\n=== DEBUG DATA:\nQuery: %+v\nErr: %+v\n", e.Query, e.Err)`,
		`fmt.Fprint(s, "Foo")`,
		"func (Foo) enumError() {}",
		"func (Baz) enumError() {}",
		"func (e QueryError) Unwrap() error {\n return e.Err\n}",
		"if e.Cause == nil {\n return nil\n }",
		"_ EnumError = (*Bar)(nil)",
		"_ fmt.Formatter = (*Bar)(nil)",
		"_ error = (*QueryError)(nil)",
		`return "Lookup"`,
	} {
		assert.Contains(t, out, want)
	}

	assert.NotContains(t, out, "func (QueryError) enumError()")
	assert.NotContains(t, out, "func (e Bar) Unwrap()")
}

func TestGenerator_GeneratedCodeTypeChecks(t *testing.T) {
	fx, file := generateOne(t, errorsSource, DefaultGeneratorConfig())

	gf, err := parser.ParseFile(fx.fset, file.Filename, file.Content, parser.ParseComments)
	require.NoError(t, err)

	conf := types.Config{Importer: importer.ForCompiler(fx.fset, "source", nil)}
	pkg, err := conf.Check("example.com/errs", fx.fset, []*ast.File{fx.file, gf}, nil)
	require.NoError(t, err)

	enum := pkg.Scope().Lookup("EnumError").Type().Underlying().(*types.Interface)
	for _, name := range []string{"Foo", "Bar", "Baz"} {
		assert.True(t, types.Implements(pkg.Scope().Lookup(name).Type(), enum), name)
	}
}

func TestGenerator_KeepsHandWrittenSealer(t *testing.T) {
	src := `package errs

//errgen:error
type (
	E interface {
		error
		isE()
	}

	A struct{}
	B struct{}
	C struct{}
)

func (A) isE()  {}
func (*B) isE() {}
`

	fx, file := generateOne(t, src, DefaultGeneratorConfig())
	out := squash(file.Content)

	assert.NotContains(t, out, "func (A) isE()")
	assert.NotContains(t, out, "func (B) isE()")
	assert.Contains(t, out, "func (C) isE() {}")

	gf, err := parser.ParseFile(fx.fset, file.Filename, file.Content, parser.ParseComments)
	require.NoError(t, err)

	conf := types.Config{Importer: importer.ForCompiler(fx.fset, "source", nil)}
	_, err = conf.Check("example.com/errs", fx.fset, []*ast.File{fx.file, gf}, nil)
	require.NoError(t, err)
}

func TestGenerator_WithoutFormatter(t *testing.T) {
	src := `package errs

//errgen:error desc="boom"
type Boom struct {
	Code int
}
`

	config := DefaultGeneratorConfig()
	config.Formatter = false

	_, file := generateOne(t, src, config)
	out := squash(file.Content)

	assert.NotContains(t, out, "Format(")
	assert.NotContains(t, out, "fmt.Formatter")
	// Nothing uses fmt, so the import is pruned.
	assert.NotContains(t, out, `"fmt"`)
	assert.Contains(t, out, `return "boom"`)
}

func TestGenerator_SkipsPackagesWithoutSubjects(t *testing.T) {
	fx := resolveSource(t, "package errs\n\ntype Plain struct{}\n")

	files, err := NewGenerator(DefaultGeneratorConfig(), nil).Generate(fx.plan)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestGenerator_CustomOutputFile(t *testing.T) {
	_, file := generateOne(t, "package errs\n\n//errgen:error\ntype E struct{}\n",
		GeneratorConfig{OutputFile: "zz_errors.go", Formatter: true})

	assert.Equal(t, "zz_errors.go", file.Filename)
}

func TestGenerator_RejectsPlanWithErrors(t *testing.T) {
	p := &plan.Plan{}
	p.Diagnostics.AddError("unknown_field", "boom", diagnostic.Location{})

	_, err := NewGenerator(DefaultGeneratorConfig(), nil).Generate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestQualifier(t *testing.T) {
	self := types.NewPackage("example.com/errs", "errs")
	q := newQualifier(self)

	assert.Empty(t, q.qualify(self))
	assert.Equal(t, "time", q.qualify(types.NewPackage("time", "time")))
	assert.Equal(t, "time2", q.qualify(types.NewPackage("example.com/time", "time")))
	assert.Equal(t, "time", q.qualify(types.NewPackage("time", "time")))

	assert.Equal(t, []importSpec{
		{Path: "example.com/time", Alias: "time2"},
		{Path: "fmt"},
		{Path: "time"},
	}, q.imports())
}

func TestValueExpr_Positional(t *testing.T) {
	rv := &plan.ResolvedVariant{Variant: &analyze.Variant{
		Name:       "Code",
		Shape:      analyze.ShapePositional,
		Underlying: types.Typ[types.Int],
	}}
	f := &plan.ResolvedField{Name: analyze.PositionalName, Field: &analyze.Field{Name: analyze.PositionalName}}

	assert.Equal(t, "int(e)", valueExpr(rv, f, newQualifier(nil)))

	rv.Variant.Underlying = types.NewMap(types.Typ[types.String], types.Typ[types.Int])
	assert.Equal(t, "(map[string]int)(e)", valueExpr(rv, f, newQualifier(nil)))
}
