package pkg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatal(err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want || Version == "" {
		t.Errorf("Version = %q, want %q", Version, want)
	}
}

func TestAuthor(t *testing.T) {
	for i, a := range Author {
		if a.Name == "" && a.Email == "" {
			t.Errorf("Author[%d] defines neither Name nor Email", i)
		}
	}
}

func TestPaths(t *testing.T) {
	if p := Prefix(); p == "" || strings.HasPrefix(p, ".") {
		t.Errorf("Prefix() = %q", p)
	}

	for name, dir := range map[string]string{
		"ConfigDir": ConfigDir(),
		"CacheDir":  CacheDir(),
	} {
		if filepath.Base(dir) != Prefix() {
			t.Errorf("%s() = %q, want suffix %q", name, dir, Prefix())
		}
	}

	if ConfigPath() != filepath.Join(ConfigDir(), "config.yaml") {
		t.Errorf("ConfigPath() = %q", ConfigPath())
	}
}

func TestError(t *testing.T) {
	base := errors.New("bad name")
	wrapped := fmt.Errorf("x=1: %w", base)

	e := ErrDefinition.Wrap(wrapped)

	if !errors.Is(e, base) || !errors.Is(e, ErrDefinition[0]) {
		t.Errorf("chain %v lost an error", e)
	}

	if !errors.Is(e, ErrDefinition) || errors.Is(ErrDefinition, e) {
		t.Errorf("chain %v does not match its sentinel", e)
	}

	if errors.Is(MakeErrorf("other"), ErrDefinition) {
		t.Error("unrelated chain matched")
	}

	if got := e.Error(); got != "invalid variable definition: x=1: bad name" {
		t.Errorf("Error() = %q", got)
	}

	if len(ErrDefinition) != 1 {
		t.Errorf("Wrap mutated the sentinel: %v", ErrDefinition)
	}

	flat := MakeError(nil, e, errors.Join(errors.New("a"), errors.New("b")))
	if len(flat) != 7 {
		t.Errorf("MakeError() = %d errors: %v", len(flat), flat)
	}
}
