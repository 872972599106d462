package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no quotes", "hello", "hello"},
		{"double quoted", `"hello"`, "hello"},
		{"single quotes only", "'hello'", "'hello'"},
		{"quotes in middle", `he"llo`, `he"llo`},
		{"only quotes", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TrimQuotes(tt.input))
		})
	}
}

func TestFixEscapeQuotes(t *testing.T) {
	assert.Equal(t, `he"llo`, FixEscapeQuotes(`he""llo`))
	assert.Equal(t, `a"b"c`, FixEscapeQuotes(`a""b""c`))
	assert.Equal(t, `a""b`, FixEscapeQuotes(`a""""b`))
}

func TestCleanArg(t *testing.T) {
	assert.Equal(t, `Kill the "Baron"`, CleanArg(` "Kill the ""Baron""" `))
	assert.Equal(t, "plain", CleanArg("plain"))
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
		err   bool
	}{
		{"true", true, false},
		{`"TRUE"`, true, false},
		{"1", true, false},
		{"false", false, false},
		{"0", false, false},
		{"", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		got, err := ParseBool(tt.input)
		if tt.err {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestParseStringArray(t *testing.T) {
	got, err := ParseStringArray(`["a","b ""x""","c"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `b "x"`, "c"}, got)

	got, err = ParseStringArray(`[]`)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseStringArray(`"a","b"`)
	assert.Error(t, err)
}
