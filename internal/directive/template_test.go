package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	pieces, err := ParseTemplate("value {A} of {B:05d}")
	require.NoError(t, err)

	assert.Equal(t, []Piece{
		{Literal: "value ", Offset: 0},
		{Ref: "A", Offset: 6},
		{Literal: " of ", Offset: 9},
		{Ref: "B", Verb: "%05d", Offset: 13},
	}, pieces)
}

func TestParseTemplate_Escapes(t *testing.T) {
	pieces, err := ParseTemplate("{{literal}} {0}")
	require.NoError(t, err)
	require.Len(t, pieces, 2)

	assert.Equal(t, "{literal} ", pieces[0].Literal)
	assert.False(t, pieces[0].IsRef())
	assert.Equal(t, "0", pieces[1].Ref)
	assert.True(t, pieces[1].IsRef())
}

func TestParseTemplate_NoPlaceholders(t *testing.T) {
	pieces, err := ParseTemplate("plain text")
	require.NoError(t, err)
	assert.Equal(t, []Piece{{Literal: "plain text"}}, pieces)

	pieces, err = ParseTemplate("")
	require.NoError(t, err)
	assert.Empty(t, pieces)
}

func TestParseTemplate_Invalid(t *testing.T) {
	tests := map[string]string{
		"{A":         "unterminated placeholder",
		"A}":         "unmatched }",
		"{}":         "invalid placeholder",
		"{a-b}":      "invalid placeholder",
		"{A:>5}":     "placeholder {A:>5}",
		"x {1a} y":   "invalid placeholder",
		"{ Name :q}": "",
	}

	for in, msg := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTemplate(in)
			if msg == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), msg)
		})
	}
}
