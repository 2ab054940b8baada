// Package logx builds slog loggers from configuration and enriches them with
// call-site and build information.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

// Attribute keys added by the enrichment helpers.
const (
	KeyFunction = "function"
	KeyFile     = "file"
	KeyLine     = "line"
	KeyModule   = "module"
	KeyVersion  = "version"
)

// Format selects the slog handler used by New.
type Format string

const (
	// FormatText writes logfmt-style key=value lines.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
)

// Config configures a logger.
type Config struct {
	// Level is a slog level name: debug, info, warn or error (optionally with
	// an offset such as "info+2"). Empty means info.
	Level string `yaml:"level,omitempty" json:"level,omitempty"`

	// Format is text (default) or json.
	Format Format `yaml:"format,omitempty" json:"format,omitempty"`

	// AddSource makes the handler record the source position of each call.
	AddSource bool `yaml:"add_source,omitempty" json:"add_source,omitempty"`
}

// New returns a logger writing to w as described by cfg.
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("logx: invalid level %q: %w", cfg.Level, err)
		}
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}

	switch cfg.Format {
	case FormatText, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("logx: unsupported format %q", cfg.Format)
	}
}

// Here returns l annotated with the function, file and line of its caller.
func Here(l *slog.Logger) *slog.Logger {
	fn, file, line := caller(2)
	return l.With(KeyFunction, fn, KeyFile, file, KeyLine, line)
}

// WithFileLocation returns l annotated with the file and line of its caller.
func WithFileLocation(l *slog.Logger) *slog.Logger {
	_, file, line := caller(2)
	return l.With(KeyFile, file, KeyLine, line)
}

// WithFunction returns l annotated with the name of the calling function.
func WithFunction(l *slog.Logger) *slog.Logger {
	fn, _, _ := caller(2)
	return l.With(KeyFunction, fn)
}

func caller(skip int) (fn, file string, line int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", "", 0
	}
	if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
	}
	return fn, file, line
}

// WithModule returns l annotated with the main module path of the running
// binary. The attribute is empty when build info is unavailable.
func WithModule(l *slog.Logger) *slog.Logger {
	path := ""
	if bi, ok := debug.ReadBuildInfo(); ok {
		path = bi.Main.Path
	}
	return l.With(KeyModule, path)
}

// WithModuleVersion returns l annotated with the main module version of the
// running binary. With short set, pre-release and build suffixes are
// dropped, leaving vMAJOR.MINOR.PATCH.
func WithModuleVersion(l *slog.Logger, short bool) *slog.Logger {
	v := ""
	if bi, ok := debug.ReadBuildInfo(); ok {
		v = bi.Main.Version
	}
	return l.With(KeyVersion, FormatVersion(v, short))
}

// FormatVersion normalizes a module version string. "(devel)" is reported
// as empty. With short set, the version is canonicalized to
// vMAJOR.MINOR.PATCH with pre-release and build suffixes dropped; a version
// that is not valid semver is reported as empty.
func FormatVersion(v string, short bool) string {
	if v == "(devel)" {
		return ""
	}
	if !short {
		return v
	}
	c := semver.Canonical(v)
	return strings.TrimSuffix(c, semver.Prerelease(c))
}
