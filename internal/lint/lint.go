// Package lint exposes errgen's checks as a go/analysis Analyzer, so editors
// and go vet report directive mistakes without running the generator.
package lint

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"errgen/internal/analyze"
	"errgen/internal/config"
	"errgen/internal/diagnostic"
	"errgen/internal/plan"
)

const doc = `errgen checks errgen:error and errgen:variant directives

It reports malformed directive options, misplaced directives, enum groups
without an interface, ambiguous cause fields, methods that clash with the
generated ones and message templates that reference missing fields.`

// Analyzer reports errgen diagnostics.
var Analyzer = &analysis.Analyzer{
	Name:     "errgen",
	Doc:      doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var configPath string

func init() {
	Analyzer.Flags.StringVar(&configPath, "config", "",
		"path to errgen.yaml (default: errgen.yaml in each package directory, if present)")
}

func run(pass *analysis.Pass) (any, error) {
	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	conf, err := loadConfig(pass)
	if err != nil {
		return nil, err
	}

	in := analyze.NewInspector(pass.Fset, pass.Pkg, pass.TypesInfo,
		analyze.WithOutputFile(conf.Output.Filename),
		analyze.WithFormatter(conf.FormatterEnabled()),
	)

	nodeFilter := []ast.Node{
		(*ast.File)(nil),
	}

	pector.Preorder(nodeFilter, func(node ast.Node) {
		in.InspectFile(node.(*ast.File))
	})

	pkg := in.Package()

	r := plan.NewResolver(plan.ResolutionConfig{Defaults: conf.DirectiveDefaults()}, nil)

	_, diags := r.ResolvePackage(pkg)
	diags.Merge(pkg.Diagnostics)
	diags.Sort()

	fallback := token.NoPos
	if len(pass.Files) > 0 {
		fallback = pass.Files[0].Package
	}

	for _, list := range [][]diagnostic.Diagnostic{diags.Errors, diags.Warnings} {
		for _, d := range list {
			pos := d.Pos
			if !pos.IsValid() {
				pos = fallback
			}

			pass.Report(analysis.Diagnostic{
				Pos:      pos,
				Category: d.Code,
				Message:  message(d),
			})
		}
	}

	return nil, nil
}

// loadConfig reads the -config file, or errgen.yaml next to the package.
func loadConfig(pass *analysis.Pass) (*config.File, error) {
	var dir string
	if len(pass.Files) > 0 {
		dir = filepath.Dir(pass.Fset.Position(pass.Files[0].Package).Filename)
	}

	conf, _, err := config.Load(configPath, dir)
	if err != nil {
		return nil, err
	}

	if err := conf.Validate().Error(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return conf, nil
}

func message(d diagnostic.Diagnostic) string {
	if path := d.Path(); path != "" {
		return path + ": " + d.Message
	}

	return d.Message
}
