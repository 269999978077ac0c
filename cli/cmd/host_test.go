package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/lambda/lang"
)

func TestHost_Environment(t *testing.T) {
	h := newHost([]string{"B=2", "A=1", "EMPTY=", "JUNK", "EQ=x=y"})

	assert.Equal(t, "1", h.Get("A"))
	assert.Equal(t, "x=y", h.Get("EQ"))
	assert.Empty(t, h.Get("MISSING"))

	assert.True(t, h.Has("EMPTY"))
	assert.False(t, h.Has("JUNK"))

	assert.Equal(t, []string{"A", "B", "EMPTY", "EQ"}, h.Names())

	assert.NotEmpty(t, h.Platform.OS)
	assert.NotEmpty(t, h.Platform.Arch)
}

func TestHost_Shell(t *testing.T) {
	h := newHost([]string{"SHELL=/bin/zsh"})
	assert.Equal(t, "/bin/zsh", h.Shell())
}

func TestHost_Files(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "f", "")
	link := filepath.Join(dir, "l")
	require.NoError(t, os.Symlink(file, link))

	h := newHost(nil)

	assert.True(t, h.Exists(file))
	assert.False(t, h.Exists(filepath.Join(dir, "none")))
	assert.True(t, h.IsDir(dir))
	assert.False(t, h.IsDir(file))
	assert.True(t, h.IsRegular(file))
	assert.True(t, h.IsRegular(link))
	assert.True(t, h.IsSymlink(link))
	assert.False(t, h.IsSymlink(file))

	assert.Equal(t, file, h.Join(dir, "f"))
	assert.Equal(t, "f", h.Rel(dir, file))
	assert.True(t, filepath.IsAbs(h.Abs(".")))
	assert.True(t, filepath.IsAbs(h.Cwd()))
}

func TestHost_Prefix(t *testing.T) {
	sep := string(os.PathListSeparator)
	h := newHost(nil)

	got := strings.Split(h.Prefix(strings.Join([]string{"/b", "/a"}, sep), "/c"), sep)
	assert.Contains(t, got, "/a")
	assert.Contains(t, got, "/b")
	assert.Contains(t, got, "/c")

	dir := t.TempDir()

	dirs := strings.Split(h.PrefixDirs("", dir), sep)
	assert.Contains(t, dirs, dir)
}

func TestGnuTarget(t *testing.T) {
	tests := []struct {
		in   Target
		want Target
	}{
		{Target{"linux", "386"}, Target{"linux", "i386"}},
		{Target{"linux", "amd64"}, Target{"linux", "x86_64"}},
		{Target{"linux", "arm64"}, Target{"linux", "aarch64"}},
		{Target{"darwin", "arm64"}, Target{"darwin", "arm64"}},
		{Target{"linux", "mipsle"}, Target{"linux", "mipsel"}},
		{Target{"linux", "riscv64"}, Target{"linux", "riscv64"}},
	}

	for _, tt := range tests {
		t.Run(tt.in.OS+"/"+tt.in.Arch, func(t *testing.T) {
			assert.Equal(t, tt.want, gnuTarget(tt.in))
		})
	}

	t.Run("goarm", func(t *testing.T) {
		t.Setenv("GOARM", "7,softfloat")
		assert.Equal(t, Target{"linux", "armv7"}, gnuTarget(Target{"linux", "arm"}))
	})
}

func TestHost_Expressions(t *testing.T) {
	p := lang.New()
	vars := map[string]any{HostIdentifier: newHost([]string{"HOME=/home/me"})}

	tests := []struct {
		src  string
		want any
	}{
		{`env.Get("HOME")`, "/home/me"},
		{`env.Has("HOME") && !env.Has("NOPE")`, true},
		{`env.Join("a", "b")`, filepath.Join("a", "b")},
		{`env.Platform.OS != ""`, true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := p.EvalMap(t.Context(), tt.src, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lang.Plain(got))
		})
	}
}
