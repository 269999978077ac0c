package profile

import (
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	p := New(WithMode("cpu"), WithPath("/tmp/x"), WithQuiet(true))

	want := Profiler{Mode: "cpu", Path: "/tmp/x", Quiet: true}
	if p != want {
		t.Errorf("New() = %+v, want %+v", p, want)
	}
}

func TestStart_NoMode(t *testing.T) {
	s := New(WithPath(t.TempDir())).Start()

	if _, ok := s.(ignore); !ok {
		t.Fatalf("Start() = %T, want no-op", s)
	}

	s.Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	s := New(WithMode("bogus"), WithPath(t.TempDir()), WithQuiet(true)).Start()
	defer s.Stop()

	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", s)
	}
}

func TestModes_Sorted(t *testing.T) {
	if m := Modes(); !slices.IsSorted(m) {
		t.Errorf("Modes() = %v", m)
	}
}
