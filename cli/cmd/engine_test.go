package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/lambda/lang"
)

func TestEngine_Comparer(t *testing.T) {
	c := Engine{}.comparer()
	assert.Equal(t, lang.NullMin, c.NullMode)
	assert.False(t, c.SuppressErrors)

	c = Engine{NullMode: "sql", SuppressErrors: true}.comparer()
	assert.Equal(t, lang.NullSQL, c.NullMode)
	assert.True(t, c.SuppressErrors)
}

func TestEngine_Resolver(t *testing.T) {
	assert.Equal(t, lang.ResolveOptional, Engine{}.resolver().Mode)
	assert.Equal(t, lang.ResolveOptional, Engine{Resolver: "optional"}.resolver().Mode)
	assert.Equal(t, lang.ResolveStrict, Engine{Resolver: "strict"}.resolver().Mode)
}

func TestEngine_Globals(t *testing.T) {
	assert.Nil(t, Engine{}.globals())

	g := Engine{Env: true}.globals()
	require.Contains(t, g, HostIdentifier)
	assert.IsType(t, &Host{}, g[HostIdentifier])
}

func TestEngine_Parser(t *testing.T) {
	tests := []struct {
		name   string
		engine Engine
		src    string
		want   any
	}{
		{name: "default", src: "1 + 2 * 3", want: int64(7)},
		{name: "bindings", engine: Engine{Bindings: true}, src: "var x = 4; x * x", want: int64(16)},
		{name: "single_equals", engine: Engine{SingleEquals: true}, src: "1 = 1", want: true},
		{name: "cache_limit", engine: Engine{CacheLimit: 1}, src: `"a" + "b"`, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.engine.parser(t.Context())

			got, err := p.EvalMap(t.Context(), tt.src, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lang.Plain(got))
		})
	}

	t.Run("bindings_disabled", func(t *testing.T) {
		_, err := Engine{}.parser(t.Context()).EvalMap(t.Context(), "var x = 4; x", nil)
		require.Error(t, err)
	})
}
