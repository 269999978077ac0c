package cmd

import (
	"bufio"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// HostIdentifier is the variable name the [Host] object is bound to.
const HostIdentifier = "env"

// Target names an operating system and instruction set architecture.
type Target struct {
	OS   string
	Arch string
}

// Host exposes the process environment, platform, and filesystem to
// expressions. Its exported fields and methods are reached through the
// member resolver, e.g. env.Get("HOME") or env.Platform.OS.
type Host struct {
	// Platform uses Go naming (amd64, arm64).
	Platform Target
	// Target uses GNU naming (x86_64, aarch64).
	Target Target

	vars map[string]string
}

//nolint:gochecknoglobals
var hostInfo = sync.OnceValue(func() Host {
	p := platform()

	return Host{Platform: p, Target: gnuTarget(p)}
})

// NewHost returns a Host snapshot of the current process environment.
func NewHost() *Host {
	return newHost(os.Environ())
}

func newHost(environ []string) *Host {
	h := hostInfo()
	h.vars = make(map[string]string, len(environ))

	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			h.vars[k] = v
		}
	}

	return &h
}

// Get returns the value of the environment variable name, or "".
func (h *Host) Get(name string) string { return h.vars[name] }

// Has reports whether the environment variable name is set.
func (h *Host) Has(name string) bool {
	_, ok := h.vars[name]

	return ok
}

// Names returns the sorted environment variable names.
func (h *Host) Names() []string {
	names := make([]string, 0, len(h.vars))
	for k := range h.vars {
		names = append(names, k)
	}

	slices.Sort(names)

	return names
}

// Hostname returns the host name reported by the kernel.
func (h *Host) Hostname() string {
	name, _ := os.Hostname()

	return name
}

// User returns the current user name.
func (h *Host) User() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}

	return h.vars["USER"]
}

// Shell returns $SHELL, or the login shell from /etc/passwd.
func (h *Host) Shell() string {
	if sh, ok := h.vars["SHELL"]; ok {
		return sh
	}

	name := h.User()
	if name == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		if e := strings.Split(s.Text(), ":"); len(e) > 6 && e[0] == name {
			return e[6]
		}
	}

	return ""
}

// Cwd returns the working directory.
func (h *Host) Cwd() string {
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}

	return h.Abs(".")
}

// Exists reports whether path names an existing file.
func (h *Host) Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// IsDir reports whether path names a directory.
func (h *Host) IsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// IsRegular reports whether path names a regular file.
func (h *Host) IsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// IsSymlink reports whether path is a symbolic link.
func (h *Host) IsSymlink(path string) bool {
	info, err := os.Lstat(path)

	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// Abs returns the absolute form of path, or path itself on error.
func (h *Host) Abs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}

	return path
}

// Join joins path elements with the OS separator.
func (h *Host) Join(elem ...string) string { return filepath.Join(elem...) }

// Rel returns to relative to from, or both joined when no relative path
// exists.
func (h *Host) Rel(from, to string) string {
	if p, err := filepath.Rel(h.Abs(from), h.Abs(to)); err == nil {
		return p
	}

	return filepath.Join(from, to)
}

// Prefix returns the path list list with prefix prepended, removing
// duplicates. Items are separated by the OS path list separator.
func (h *Host) Prefix(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// PrefixDirs is like [Host.Prefix] but keeps only items that are existing
// directories.
func (h *Host) PrefixDirs(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(h.IsDir),
	).String()
}

// gnuTarget converts Go platform names to GNU GCC/LLVM conventions.
func gnuTarget(t Target) Target {
	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		if arm, ok := os.LookupEnv("GOARM"); ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch arm = strings.TrimSpace(arm); arm {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// platform returns the host platform in Go naming, honoring the GOHOSTOS,
// GOOS, GOHOSTARCH and GOARCH overrides.
func platform() Target {
	pick := func(def string, keys ...string) string {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok {
				return v
			}
		}

		return def
	}

	return Target{
		OS:   pick(runtime.GOOS, "GOHOSTOS", "GOOS"),
		Arch: pick(runtime.GOARCH, "GOHOSTARCH", "GOARCH"),
	}
}
