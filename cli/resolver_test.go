package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
log:
  level: debug
indent: 2
ratio: 1.5
null_mode: sql
env: true
var:
  - greeting="hi"
  - 7
`

func TestResolveYAML_Flatten(t *testing.T) {
	r, err := resolveYAML(strings.NewReader(testConfig))
	require.NoError(t, err)

	c, ok := r.(config)
	require.True(t, ok)

	assert.Equal(t, config{
		"log-level": "debug",
		"indent":    "2",
		"ratio":     "1.5",
		"null-mode": "sql",
		"env":       true,
		"var":       []any{`greeting="hi"`, "7"},
	}, c)
}

func TestResolveYAML_Invalid(t *testing.T) {
	for _, src := range []string{"", "  \n", "key: [unterminated"} {
		r, err := resolveYAML(strings.NewReader(src))
		require.NoError(t, err, src)
		assert.Empty(t, r, src)
	}
}

type resolverTarget struct {
	Log struct {
		Level string `default:"info"`
	} `embed:"" prefix:"log-"`

	Indent   int
	Ratio    float64
	NullMode string `default:"min"`
	Env      bool
	Var      []string `sep:"none"`
	Other    string   `default:"unset"`
}

func TestResolveYAML_Kong(t *testing.T) {
	r, err := resolveYAML(strings.NewReader(testConfig))
	require.NoError(t, err)

	t.Run("config", func(t *testing.T) {
		var v resolverTarget

		p, err := kong.New(&v, kong.Resolvers(r), kong.Exit(func(int) {}))
		require.NoError(t, err)

		_, err = p.Parse(nil)
		require.NoError(t, err)

		assert.Equal(t, "debug", v.Log.Level)
		assert.Equal(t, 2, v.Indent)
		assert.InDelta(t, 1.5, v.Ratio, 1e-9)
		assert.Equal(t, "sql", v.NullMode)
		assert.True(t, v.Env)
		assert.Equal(t, []string{`greeting="hi"`, "7"}, v.Var)
		assert.Equal(t, "unset", v.Other)
	})

	t.Run("flags_override", func(t *testing.T) {
		var v resolverTarget

		p, err := kong.New(&v, kong.Resolvers(r), kong.Exit(func(int) {}))
		require.NoError(t, err)

		_, err = p.Parse([]string{"--indent=4", "--log-level=warn"})
		require.NoError(t, err)

		assert.Equal(t, 4, v.Indent)
		assert.Equal(t, "warn", v.Log.Level)
	})
}
