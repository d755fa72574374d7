package diagnostic

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Severity: DiagnosticError,
		Code:     "unknown_key",
		Message:  `unknown key "desc2"`,
		Location: Location{
			Subject:  "StorageError",
			Variant:  "NotFound",
			Position: token.Position{Filename: "errors.go", Line: 12, Column: 2},
		},
	}

	assert.Equal(t, `errors.go:12:2: [StorageError.NotFound] [unknown_key] unknown key "desc2"`, d.String())
}

func TestDiagnostic_StringWithoutLocation(t *testing.T) {
	d := Diagnostic{Code: "invalid_value", Message: "bad"}
	assert.Equal(t, "[invalid_value] bad", d.String())
}

func TestLocation_PathCollapsesStructSubjects(t *testing.T) {
	// A struct subject is its own single variant.
	loc := Location{Subject: "StructError", Variant: "StructError", Field: "B"}
	assert.Equal(t, "StructError.B", loc.Path())
}

func TestDiagnostics_ErrorAndMerge(t *testing.T) {
	var d Diagnostics
	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())

	other := Diagnostics{}
	other.AddWarning("stale_file", "generated file is stale", Location{})
	other.AddError("duplicate_key", `"fmt" is already defined`, Location{Subject: "A"})
	other.AddError("unknown_field", "no field C", Location{Subject: "A", Field: "C"})

	d.Merge(other)

	require.True(t, d.HasErrors())
	assert.Len(t, d.Warnings, 1)
	assert.Equal(t, DiagnosticWarning, d.Warnings[0].Severity)
	assert.Equal(t,
		"[A] [duplicate_key] \"fmt\" is already defined\n[A.C] [unknown_field] no field C",
		d.Error().Error())
}

func TestDiagnostics_Sort(t *testing.T) {
	var d Diagnostics
	d.AddError("b", "second", Location{Position: token.Position{Filename: "a.go", Line: 9, Column: 1}})
	d.AddError("a", "first", Location{Position: token.Position{Filename: "a.go", Line: 3, Column: 4}})
	d.AddError("c", "other file", Location{Position: token.Position{Filename: "b.go", Line: 1, Column: 1}})

	d.Sort()

	codes := []string{d.Errors[0].Code, d.Errors[1].Code, d.Errors[2].Code}
	assert.Equal(t, []string{"a", "b", "c"}, codes)
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(0).String())
}
