package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"errgen/internal/diagnostic"
	"errgen/internal/directive"
	"errgen/internal/gen"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "errgen.yaml"

// CurrentVersion is the only supported configuration version.
const CurrentVersion = "1"

// Diagnostic codes reported by Validate.
const (
	CodeUnsupportedVersion = "unsupported_version"
	CodeInvalidFilename    = "invalid_filename"
	CodeInvalidTemplate    = directive.CodeInvalidTemplate
)

// File is the errgen.yaml document.
type File struct {
	Version  string   `yaml:"version"`
	Output   Output   `yaml:"output"`
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// Output configures the generated files.
type Output struct {
	// Filename is the base name of the file generated in each package.
	Filename string `yaml:"filename"`
	// Formatter enables Format methods. Unset means true.
	Formatter *bool `yaml:"formatter,omitempty"`
}

// Defaults are applied to every error type below its errgen:error options.
type Defaults struct {
	Desc *string `yaml:"desc,omitempty"`
	// Fmt is display, debug or a message template.
	Fmt *string `yaml:"fmt,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *File {
	f := &File{}
	applyDefaults(f)

	return f
}

// LoadFile loads and parses a configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Load loads path when it is set. Otherwise it loads errgen.yaml from dir if
// present, and falls back to the defaults.
func Load(path, dir string) (*File, string, error) {
	if path != "" {
		f, err := LoadFile(path)
		return f, path, err
	}

	candidate := filepath.Join(dir, FileName)

	_, err := os.Stat(candidate)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), "", nil
	}

	if err != nil {
		return nil, "", fmt.Errorf("failed to stat %s: %w", candidate, err)
	}

	f, err := LoadFile(candidate)

	return f, candidate, err
}

// Parse parses YAML data into a File. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = CurrentVersion
	}

	if f.Output.Filename == "" {
		f.Output.Filename = gen.DefaultOutputFile
	}

	if f.Output.Formatter == nil {
		enabled := true
		f.Output.Formatter = &enabled
	}
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// Validate checks the configuration values.
func (f *File) Validate() *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if f.Version != CurrentVersion {
		res.AddError(CodeUnsupportedVersion,
			fmt.Sprintf("unsupported config version %q (expected %q)", f.Version, CurrentVersion),
			diagnostic.Location{Field: "version"})
	}

	name := f.Output.Filename
	switch {
	case strings.ContainsAny(name, `/\`):
		res.AddError(CodeInvalidFilename,
			fmt.Sprintf("output filename %q must be a base name", name),
			diagnostic.Location{Field: "output.filename"})
	case !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go"):
		res.AddError(CodeInvalidFilename,
			fmt.Sprintf("output filename %q must be a non-test .go file", name),
			diagnostic.Location{Field: "output.filename"})
	}

	if f.Defaults.Fmt != nil {
		if _, err := directive.ParseTemplate(*f.Defaults.Fmt); err != nil {
			res.AddError(CodeInvalidTemplate, err.Error(), diagnostic.Location{Field: "defaults.fmt"})
		}
	}

	return res
}

// FormatterEnabled reports whether Format methods are generated.
func (f *File) FormatterEnabled() bool {
	return f.Output.Formatter == nil || *f.Output.Formatter
}

// DirectiveDefaults returns the project defaults as directive options.
func (f *File) DirectiveDefaults() directive.Config {
	var cfg directive.Config

	if f.Defaults.Desc != nil {
		desc := *f.Defaults.Desc
		cfg.Desc = &desc
	}

	if f.Defaults.Fmt != nil {
		fm := directive.FormatFromString(*f.Defaults.Fmt)
		cfg.Fmt = &fm
	}

	return cfg
}
