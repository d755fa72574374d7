// Package main provides the CLI entrypoint for errgen.
//
// errgen generates the methods of annotated error types:
//   - Parses Go packages (AST + go/types) to find errgen:error directives
//   - Resolves each variant's message through the variant, root and project
//     defaults chain
//   - Writes Error, Format and Unwrap methods to errors_errgen.go
//
// Typical use is a go:generate line next to the error types:
//
//	//go:generate go run errgen/cmd/errgen gen .
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// envNoPrompt disables interactive confirmation.
const envNoPrompt = "ERRGEN_NO_PROMPT"

const usage = `errgen - generate Error, Format and Unwrap methods for annotated error types

Usage:
  errgen gen   [flags] [packages]   write errors_errgen.go files
  errgen check [flags] [packages]   fail when generated files are stale or missing
  errgen plan  [flags] [packages]   print resolved messages without writing

Packages default to ".". Run errgen <command> -h for flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// options are the flags shared by every command.
type options struct {
	config  string
	dir     string
	tags    string
	verbose bool
	yes     bool
	dump    bool
}

func (o *options) register(fs *flag.FlagSet, name string) {
	fs.StringVar(&o.config, "config", "", "path to errgen.yaml (default: errgen.yaml in -dir, if present)")
	fs.StringVar(&o.dir, "dir", "", "directory packages are resolved from (default: current directory)")
	fs.StringVar(&o.tags, "tags", "", "comma-separated build tags")
	fs.BoolVar(&o.verbose, "v", false, "enable debug logging")

	switch name {
	case "gen":
		fs.BoolVar(&o.yes, "y", false, "overwrite files errgen did not write without asking")
	case "plan":
		fs.BoolVar(&o.dump, "dump", false, "dump the effective configuration and the resolved model")
	}
}

func (o *options) buildTags() []string {
	var tags []string

	for _, t := range strings.Split(o.tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return tags
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type command func(ctx context.Context, env *environment, patterns []string) error

// environment carries what commands share besides their flags.
type environment struct {
	opts   options
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	// confirm asks before overwriting a file errgen did not write.
	confirm func(path string) (bool, error)
}

// errFailed signals a failure that was already reported.
var errFailed = errors.New("errgen failed")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	commands := map[string]command{
		"gen":   runGen,
		"check": runCheck,
		"plan":  runPlan,
	}

	name := args[0]
	if name == "help" || name == "-h" || name == "-help" || name == "--help" {
		fmt.Fprint(stdout, usage)
		return exitOK
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "errgen: unknown command %q\n\n%s", name, usage)
		return exitUsage
	}

	env := &environment{stdout: stdout, stderr: stderr}

	fs := flag.NewFlagSet("errgen "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	env.opts.register(fs, name)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}

		return exitUsage
	}

	env.logger = newLogger(stderr, env.opts.verbose)
	env.confirm = confirmer(env.opts.yes, os.Getenv(envNoPrompt) != "", env.logger)

	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	if err := cmd(ctx, env, patterns); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(stderr, "errgen %s: %v\n", name, err)
		}

		return exitError
	}

	return exitOK
}
