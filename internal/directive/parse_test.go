package directive

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseArgs(t *testing.T) {
	debug := Debug()
	display := Display()
	custom := Custom("value {A} too large")

	tests := []struct {
		name string
		src  string
		want Config
	}{
		{name: "empty", src: "", want: Config{}},
		{name: "blank", src: "   ", want: Config{}},
		{
			name: "desc and fmt",
			src:  `desc="My enum error", fmt=debug`,
			want: Config{Desc: strPtr("My enum error"), Fmt: &debug},
		},
		{
			name: "without comma",
			src:  `fmt=display desc="x"`,
			want: Config{Desc: strPtr("x"), Fmt: &display},
		},
		{
			name: "custom template",
			src:  `fmt="value {A} too large"`,
			want: Config{Fmt: &custom},
		},
		{
			name: "raw string",
			src:  "desc=`raw \\n text`",
			want: Config{Desc: strPtr(`raw \n text`)},
		},
		{
			name: "trailing comment",
			src:  `desc="x" // note`,
			want: Config{Desc: strPtr("x")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		code       string
		offset     int
		msgContain string
	}{
		{name: "unknown key", src: `desc2="x"`, code: CodeUnknownKey, offset: 0, msgContain: `unknown key "desc2" (expected desc or fmt); did you mean desc?`},
		{name: "misspelled fmt", src: `frmt=debug`, code: CodeUnknownKey, offset: 0, msgContain: "did you mean fmt?"},
		{name: "unknown second key", src: `fmt=debug, level=2`, code: CodeUnknownKey, offset: 11, msgContain: `"level"`},
		{name: "duplicate desc", src: `desc="a", desc="b"`, code: CodeDuplicateKey, offset: 10, msgContain: `"desc" is already defined`},
		{name: "duplicate fmt", src: `fmt=debug fmt=display`, code: CodeDuplicateKey, offset: 10, msgContain: `"fmt" is already defined`},
		{name: "desc not a string", src: `desc=debug`, code: CodeInvalidValue, offset: 5, msgContain: "desc must be a string"},
		{name: "fmt number", src: `fmt=42`, code: CodeInvalidValue, offset: 4, msgContain: "either display, debug or a custom string"},
		{name: "fmt unknown mode", src: `fmt=verbose`, code: CodeInvalidValue, offset: 4, msgContain: `"verbose"`},
		{name: "missing assign", src: `desc`, code: CodeSyntax, offset: 4, msgContain: "expected = after"},
		{name: "not a key", src: `"x"`, code: CodeSyntax, offset: 0, msgContain: "expected key"},
		{name: "bad template", src: `fmt="{A"`, code: CodeInvalidTemplate, offset: 4, msgContain: "unterminated placeholder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.src)
			require.Error(t, err)

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.code, perr.Code)
			assert.Equal(t, tt.offset, perr.Offset)
			assert.Contains(t, perr.Error(), tt.msgContain)
		})
	}
}

func TestFind(t *testing.T) {
	cg := &ast.CommentGroup{List: []*ast.Comment{
		{Slash: 10, Text: "// NotFound is returned when a key is missing."},
		{Slash: 60, Text: `//errgen:variant desc="Key not found"`},
	}}

	found, err := Find(cg)
	require.NoError(t, err)
	require.Len(t, found, 1)

	assert.Equal(t, KindVariant, found[0].Kind)
	assert.Equal(t, token.Pos(60), found[0].Pos)
	assert.Equal(t, token.Pos(60), found[0].Config.Pos)
	require.NotNil(t, found[0].Config.Desc)
	assert.Equal(t, "Key not found", *found[0].Config.Desc)
	assert.Nil(t, found[0].Config.Fmt)
}

func TestFind_NoArgs(t *testing.T) {
	cg := &ast.CommentGroup{List: []*ast.Comment{{Slash: 1, Text: "//errgen:error"}}}

	found, err := Find(cg)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, KindError, found[0].Kind)
	assert.True(t, found[0].Config.IsEmpty())
}

func TestFind_ErrorPosition(t *testing.T) {
	cg := &ast.CommentGroup{List: []*ast.Comment{{Slash: 100, Text: `//errgen:error desc2="x"`}}}

	_, err := Find(cg)
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, CodeUnknownKey, perr.Code)
	// "//errgen:error " is 15 bytes long.
	assert.Equal(t, token.Pos(115), perr.Pos)
}

func TestFind_UnknownDirective(t *testing.T) {
	cg := &ast.CommentGroup{List: []*ast.Comment{{Slash: 5, Text: "//errgen:errors"}}}

	_, err := Find(cg)
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, CodeUnknownDirective, perr.Code)
	assert.Equal(t, token.Pos(5), perr.Pos)
}

func TestFind_IgnoresSpacedComments(t *testing.T) {
	cg := &ast.CommentGroup{List: []*ast.Comment{{Slash: 1, Text: "// errgen:error desc2=1"}}}

	found, err := Find(cg)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "display", Display().String())
	assert.Equal(t, "debug", Debug().String())
	assert.Equal(t, `"{A} failed"`, Custom("{A} failed").String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestFormatFromString(t *testing.T) {
	assert.Equal(t, Display(), FormatFromString("display"))
	assert.Equal(t, Debug(), FormatFromString("debug"))
	assert.Equal(t, Custom("{Op} failed"), FormatFromString("{Op} failed"))
}
