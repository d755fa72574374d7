// Package config loads the project configuration file, errgen.yaml.
//
// The file is optional. It names the generated file, toggles Format
// generation and sets project defaults that sit below errgen:error
// directives in the fallback chain:
//
//	version: "1"
//	output:
//	  filename: errors_errgen.go
//	  formatter: true
//	defaults:
//	  fmt: debug
package config
