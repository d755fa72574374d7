package analyze

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// Config controls package loading.
type Config struct {
	// Dir is the working directory patterns are resolved against.
	Dir string
	// BuildTags are passed to the build system as -tags.
	BuildTags []string
	// OutputFile is the base name of the generated file.
	OutputFile string
	// Formatter tells whether Format methods will be generated.
	Formatter bool
}

// Analyzer loads Go packages and collects their error subjects.
type Analyzer struct {
	config Config
	logger *slog.Logger
}

// NewAnalyzer creates a new Analyzer. A nil logger discards output.
func NewAnalyzer(config Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Analyzer{config: config, logger: logger}
}

// LoadPackages loads the specified packages and inspects their declarations.
// Patterns are standard Go package patterns (e.g., "./...", "errgen/examples/enumerr").
//
// Type errors do not stop loading: a stale generated file commonly refers to
// fields that were just renamed, and regenerating it is the fix.
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     a.config.Dir,
	}

	if len(a.config.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(a.config.BuildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError {
				a.logger.Warn("type error", "package", pkg.PkgPath, "error", e.Error())
				continue
			}

			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	out := make([]*Package, 0, len(pkgs))

	for _, pkg := range pkgs {
		out = append(out, a.processPackage(pkg))
	}

	return out, nil
}

// processPackage inspects the syntax of a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) *Package {
	in := NewInspector(pkg.Fset, pkg.Types, pkg.TypesInfo,
		WithOutputFile(a.config.OutputFile),
		WithFormatter(a.config.Formatter),
		WithLogger(a.logger),
	)

	for _, f := range pkg.Syntax {
		in.InspectFile(f)
	}

	p := in.Package()
	p.Path = pkg.PkgPath
	p.Name = pkg.Name

	a.logger.Debug("inspected package", "package", p.Path, "subjects", len(p.Subjects),
		"errors", len(p.Diagnostics.Errors))

	return p
}
