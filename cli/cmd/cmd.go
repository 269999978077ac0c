package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lambda/metrics"
)

type (
	kongKey     struct{}
	outputKey   struct{}
	recorderKey struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongKey{}).(*kong.Context)

	return ktx
}

// WithOutput returns a context whose commands write results to w instead of
// standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithRecorder returns a context whose commands report engine metrics to
// rec.
func WithRecorder(ctx context.Context, rec metrics.Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, rec)
}

func recorderFrom(ctx context.Context) metrics.Recorder {
	if rec, ok := ctx.Value(recorderKey{}).(metrics.Recorder); ok && rec != nil {
		return rec
	}

	return metrics.Noop{}
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is one opened input. Close is a no-op for stdin.
type source struct {
	name string
	io.ReadCloser
}

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

// fileKey uniquely identifies a file by its device and inode numbers, so
// symlinks and relative paths to the same file are opened once.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each path in order, skipping files already opened under
// another name. All occurrences of "-" collapse into a single stdin source
// placed last. Closing the returned sources is the caller's job, including
// when an error is returned.
func openSources(paths []string) ([]source, error) {
	var (
		out      []source
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	if info, err := os.Stdin.Stat(); err == nil {
		if key, ok := makeFileKey(info); ok {
			seen[key] = struct{}{}
		}
	}

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		src, dup, err := openUnique(path, seen)
		if err != nil {
			return out, ErrReadSource.Wrap(err)
		}

		if dup {
			// A named path may resolve to the same file as stdin.
			hasStdin = hasStdin || isStdin(path)

			continue
		}

		out = append(out, src)
	}

	if hasStdin {
		out = append(out, source{name: stdinSource, ReadCloser: nopCloser{os.Stdin}})
	}

	return out, nil
}

func closeSources(srcs []source) {
	for _, s := range srcs {
		_ = s.Close()
	}
}

// openUnique opens path unless its device and inode are already in seen.
func openUnique(path string, seen map[fileKey]struct{}) (source, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return source{}, false, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return source{}, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return source{}, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return source{}, true, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return source{}, false, err
	}

	return source{name: path, ReadCloser: file}, false, nil
}

func isStdin(path string) bool {
	a, err := os.Stat(path)
	if err != nil {
		return false
	}

	b, err := os.Stdin.Stat()

	return err == nil && os.SameFile(a, b)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (fileKey, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
