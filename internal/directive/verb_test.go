package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVerb(t *testing.T) {
	tests := map[string]string{
		"%05d":   "%05d",
		"05d":    "%05d",
		"5":      "%5v",
		"+":      "%+v",
		"%-8.3f": "%-8.3f",
		"x":      "%x",
		"#v":     "%#v",
		".2":     "%.2v",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := NormalizeVerb(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestNormalizeVerb_Invalid(t *testing.T) {
	for _, in := range []string{"", "%", ">5", "5dd", "05z", "%%"} {
		t.Run(in, func(t *testing.T) {
			_, err := NormalizeVerb(in)
			require.Error(t, err)

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, CodeInvalidVerb, perr.Code)
		})
	}
}

func TestParseFieldFormat(t *testing.T) {
	f, err := ParseFieldFormat("debug")
	require.NoError(t, err)
	assert.Equal(t, Debug(), f)

	f, err = ParseFieldFormat("display")
	require.NoError(t, err)
	assert.Equal(t, Display(), f)

	f, err = ParseFieldFormat("05")
	require.NoError(t, err)
	assert.Equal(t, Custom("%05v"), f)

	_, err = ParseFieldFormat("")
	require.Error(t, err)
}

func TestParseFieldTags(t *testing.T) {
	tags, err := ParseFieldTags(`json:"b" fmt:"05d"`)
	require.NoError(t, err)
	require.NotNil(t, tags.Format)
	assert.Equal(t, Custom("%05d"), *tags.Format)
	assert.False(t, tags.Source)

	tags, err = ParseFieldTags(`errgen:"source"`)
	require.NoError(t, err)
	assert.Nil(t, tags.Format)
	assert.True(t, tags.Source)

	tags, err = ParseFieldTags("")
	require.NoError(t, err)
	assert.Equal(t, FieldTags{}, tags)

	_, err = ParseFieldTags(`errgen:"cause"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown errgen tag value "cause"`)

	_, err = ParseFieldTags(`fmt:">5"`)
	require.Error(t, err)
}
