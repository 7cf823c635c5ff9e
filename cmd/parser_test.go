package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlagSet() *CommandFlagSet {
	return &CommandFlagSet{
		Flags: map[string]*CommandFlag{
			"type":      {Name: "type", Short: "t", Type: "string", Default: "collection"},
			"filter":    {Name: "filter", Short: "f", Type: "string", Multiple: true},
			"limit":     {Name: "limit", Short: "n", Type: "int"},
			"long":      {Name: "long", Short: "l", Type: "bool"},
			"recursive": {Name: "recursive", Short: "r", Type: "bool"},
		},
	}
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name  string
		raw   []string
		args  []string
		flags map[string]any
	}{
		{
			name:  "defaults",
			raw:   []string{"user"},
			args:  []string{"user"},
			flags: map[string]any{"type": "collection"},
		},
		{
			name:  "long flags",
			raw:   []string{"--type=file", "--limit", "5", "user"},
			args:  []string{"user"},
			flags: map[string]any{"type": "file", "limit": int64(5)},
		},
		{
			name:  "combined short bools",
			raw:   []string{"-lr", "user"},
			args:  []string{"user"},
			flags: map[string]any{"type": "collection", "long": true, "recursive": true},
		},
		{
			name:  "attached short value",
			raw:   []string{"-tdataset", "user"},
			args:  []string{"user"},
			flags: map[string]any{"type": "dataset"},
		},
		{
			name:  "repeated filter",
			raw:   []string{"-f", "project=data26", "--filter=datatype=AOD", "user"},
			args:  []string{"user"},
			flags: map[string]any{"type": "collection", "filter": []string{"project=data26", "datatype=AOD"}},
		},
		{
			name:  "negative number value",
			raw:   []string{"user:f1", "-n", "-1"},
			args:  []string{"user:f1"},
			flags: map[string]any{"type": "collection", "limit": int64(-1)},
		},
		{
			name:  "double dash",
			raw:   []string{"--", "-l", "user"},
			args:  []string{"-l", "user"},
			flags: map[string]any{"type": "collection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := NewParser(testFlagSet()).Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.args, args.Args)
			for name, want := range tt.flags {
				assert.Equal(t, want, args.Flags[name], name)
			}
		})
	}
}

func TestParser_Errors(t *testing.T) {
	tests := map[string][]string{
		"unknown long":  {"--nope"},
		"unknown short": {"-x"},
		"missing value": {"--type"},
		"bad int":       {"--limit", "many"},
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewParser(testFlagSet()).Parse(raw)
			assert.Error(t, err)
		})
	}
}

func TestParser_Required(t *testing.T) {
	flags := &CommandFlagSet{Flags: map[string]*CommandFlag{
		"key": {Name: "key", Short: "k", Type: "string", Required: true},
	}}

	_, err := NewParser(flags).Parse(nil)
	assert.ErrorContains(t, err, "required flag: -k / --key")
}

func TestGlobalParser_StopsAtCommand(t *testing.T) {
	flags := &CommandFlagSet{Flags: map[string]*CommandFlag{
		"database": {Name: "database", Short: "d", Type: "string"},
	}}

	args, err := NewGlobalParser(flags).Parse([]string{"-d", "sqlite://x.db", "list", "-l", "user"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite://x.db", args.String("database", ""))
	assert.Equal(t, []string{"list", "-l", "user"}, args.Args)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, float64(3), ParseValue("3"))
	assert.Equal(t, true, ParseValue("true"))
	assert.Nil(t, ParseValue("null"))
	assert.Equal(t, []any{"a", "b"}, ParseValue(`["a","b"]`))
	assert.Equal(t, "AOD", ParseValue("AOD"))
	assert.Equal(t, "3", ParseValue(`"3"`))
}

func TestParsePairs(t *testing.T) {
	meta, err := ParsePairs([]string{"project=data26", "events=4", "expr=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"project": "data26", "events": float64(4), "expr": "a=b"}, meta)

	_, err = ParsePairs([]string{"nokey"})
	assert.Error(t, err)
	_, err = ParsePairs([]string{"=v"})
	assert.Error(t, err)
}
