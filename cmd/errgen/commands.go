package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"

	"errgen/internal/analyze"
	"errgen/internal/config"
	"errgen/internal/diagnostic"
	"errgen/internal/gen"
	"errgen/internal/plan"
)

// pipeline loads, resolves and generates with one configuration.
type pipeline struct {
	env  *environment
	conf *config.File
}

func newPipeline(env *environment) (*pipeline, error) {
	conf, path, err := config.Load(env.opts.config, env.opts.dir)
	if err != nil {
		return nil, err
	}

	if path != "" {
		env.logger.Debug("loaded config", "path", path)
	}

	diags := conf.Validate()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid config: %w", diags.Error())
	}

	return &pipeline{env: env, conf: conf}, nil
}

// resolve loads the packages and resolves their error types. Diagnostics are
// printed; errFailed is returned when any of them is an error.
func (p *pipeline) resolve(ctx context.Context, patterns []string) (*plan.Plan, error) {
	an := analyze.NewAnalyzer(analyze.Config{
		Dir:        p.env.opts.dir,
		BuildTags:  p.env.opts.buildTags(),
		OutputFile: p.conf.Output.Filename,
		Formatter:  p.conf.FormatterEnabled(),
	}, p.env.logger)

	pkgs, err := an.LoadPackages(ctx, patterns...)
	if err != nil {
		return nil, err
	}

	r := plan.NewResolver(plan.ResolutionConfig{Defaults: p.conf.DirectiveDefaults()}, p.env.logger)

	res, err := r.Resolve(pkgs)
	if res != nil {
		p.report(res.Diagnostics)
	}

	if err != nil {
		if res == nil {
			return nil, err
		}

		return nil, errFailed
	}

	return res, nil
}

func (p *pipeline) report(diags diagnostic.Diagnostics) {
	for _, d := range diags.Warnings {
		fmt.Fprintf(p.env.stderr, "warning: %s\n", d)
	}

	for _, d := range diags.Errors {
		fmt.Fprintln(p.env.stderr, d)
	}
}

func (p *pipeline) generator() *gen.Generator {
	return gen.NewGenerator(gen.GeneratorConfig{
		OutputFile:       p.conf.Output.Filename,
		Formatter:        p.conf.FormatterEnabled(),
		DebugUnformatted: true,
	}, p.env.logger)
}

// generate renders the files of every package with error types and lists
// the output files left in packages that have none.
func (p *pipeline) generate(ctx context.Context, patterns []string) ([]gen.GeneratedFile, []string, error) {
	res, err := p.resolve(ctx, patterns)
	if err != nil {
		return nil, nil, err
	}

	g := p.generator()

	files, err := g.Generate(res)
	if err != nil {
		return nil, nil, err
	}

	orphans, err := g.Orphans(res)
	if err != nil {
		return nil, nil, err
	}

	return files, orphans, nil
}

func runGen(ctx context.Context, env *environment, patterns []string) error {
	p, err := newPipeline(env)
	if err != nil {
		return err
	}

	files, orphans, err := p.generate(ctx, patterns)
	if err != nil {
		return err
	}

	written, err := gen.WriteFiles(files, env.confirm)
	for _, path := range written {
		fmt.Fprintf(env.stdout, "wrote %s\n", path)
	}

	if err != nil {
		return err
	}

	removed, err := gen.RemoveFiles(orphans)
	for _, path := range removed {
		fmt.Fprintf(env.stdout, "removed %s\n", path)
	}

	if err != nil {
		return err
	}

	env.logger.Debug("generation done", "files", len(files), "written", len(written), "removed", len(removed))

	return nil
}

func runCheck(ctx context.Context, env *environment, patterns []string) error {
	p, err := newPipeline(env)
	if err != nil {
		return err
	}

	files, orphans, err := p.generate(ctx, patterns)
	if err != nil {
		return err
	}

	failed := len(orphans) > 0

	for _, path := range orphans {
		fmt.Fprintf(env.stdout, "%s: %s\n", path, gen.StatusOrphaned)
	}

	for _, f := range files {
		status, err := gen.Compare(f)
		if err != nil {
			return err
		}

		if status == gen.StatusUpToDate {
			env.logger.Debug("up to date", "path", f.Path())
			continue
		}

		failed = true

		fmt.Fprintf(env.stdout, "%s: %s\n", f.Path(), status)
	}

	if failed {
		fmt.Fprintln(env.stderr, "run errgen gen to update generated files")
		return errFailed
	}

	return nil
}

func runPlan(ctx context.Context, env *environment, patterns []string) error {
	p, err := newPipeline(env)
	if err != nil {
		return err
	}

	res, err := p.resolve(ctx, patterns)
	if err != nil {
		return err
	}

	if env.opts.dump {
		data, err := config.Marshal(p.conf)
		if err != nil {
			return err
		}

		fmt.Fprintf(env.stdout, "# effective configuration\n%s\n", data)

		dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		dumper.Fdump(env.stdout, dumpPlan(res))

		return nil
	}

	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)

	for _, rp := range res.Packages {
		if len(rp.Subjects) == 0 {
			continue
		}

		fmt.Fprintf(tw, "%s\n", rp.Package.Path)

		for _, rs := range rp.Subjects {
			fmt.Fprintf(tw, "  %s (%s)\n", rs.Subject.Name, rs.Subject.Kind)

			for _, rv := range rs.Variants {
				fmt.Fprintf(tw, "    %s\t%s\t%s\n",
					rv.Variant.Name, describe(rv.Effective), strconv.Quote(rv.Message.String()))
			}
		}
	}

	return tw.Flush()
}

// describe summarizes where the options of a variant came from.
func describe(eff plan.Effective) string {
	s := fmt.Sprintf("fmt=%s (%s)", eff.Format, eff.FormatOrigin)
	if eff.Desc != nil {
		s += fmt.Sprintf(" desc (%s)", eff.DescOrigin)
	}

	return s
}

// dumpedVariant is the part of a resolved variant worth dumping; types and
// file sets would drown it.
type dumpedVariant struct {
	Package   string
	Subject   string
	Variant   string
	Shape     string
	Effective plan.Effective
	Fields    []dumpedField
	Message   string
	Debug     string
	Source    string
}

type dumpedField struct {
	Name      string
	Verb      string
	DebugVerb string
}

func dumpPlan(res *plan.Plan) []dumpedVariant {
	var out []dumpedVariant

	for _, rp := range res.Packages {
		for _, rs := range rp.Subjects {
			for _, rv := range rs.Variants {
				dv := dumpedVariant{
					Package:   rp.Package.Path,
					Subject:   rs.Subject.Name,
					Variant:   rv.Variant.Name,
					Shape:     rv.Variant.Shape.String(),
					Effective: rv.Effective,
					Message:   rv.Message.String(),
					Debug:     rv.Debug.String(),
				}

				for _, f := range rv.Fields {
					dv.Fields = append(dv.Fields, dumpedField{Name: f.Name, Verb: f.Verb, DebugVerb: f.DebugVerb})
				}

				if rv.Source != nil {
					dv.Source = rv.Source.Name
				}

				out = append(out, dv)
			}
		}
	}

	return out
}
