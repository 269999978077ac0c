// Package profile provides optional runtime profiling for the lambda
// command.
//
// Profiling is built on [github.com/pkg/profile] and only compiled in with
// the "pprof" build tag. Without the tag, [Modes] is empty and
// [Profiler.Start] returns a no-op.
//
//	p := profile.New(profile.WithMode("cpu"), profile.WithPath("/tmp/lambda"))
//	defer p.Start().Stop()
//
// Profile files are named after their mode (cpu.pprof, mem.pprof, ...) and
// can be inspected with "go tool pprof". Builds with the tag also register
// the [net/http/pprof] handlers on [net/http.DefaultServeMux].
package profile
